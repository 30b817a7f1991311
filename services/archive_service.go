package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Dosada05/tournament-archive/live"
	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/Dosada05/tournament-archive/storage"
	"github.com/Dosada05/tournament-archive/versioning"
	"golang.org/x/sync/singleflight"
)

const (
	archiveIndexKey    = "archives/index.json"
	archiveContentType = "application/json"

	defaultIndexUpdateAttempts = 5
	defaultIndexBackoffBase    = 1 * time.Second
	defaultIndexBackoffCap     = 5 * time.Second

	defaultListRetryAttempts = 3
)

// Broadcaster рассылает события хода операции подписчикам комнаты
// турнира; live.Hub реализует его.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Archiver замораживает турнир в неизменяемый снапшот в объектном
// хранилище и ведёт глобальный индекс архивов.
//
// Индекс — единственное разделяемое изменяемое состояние подсистемы.
// Хранилище не даёт compare-and-swap, поэтому обновление идёт через
// ограниченный оптимистичный цикл read-modify-write с перечитыванием
// перед каждой попыткой записи; при истинно одновременных писателях
// действует last-writer-wins.
type Archiver interface {
	Archive(ctx context.Context, tournamentID int, archivedBy string) (*models.ArchiveResult, error)
	GetArchive(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error)
	ListArchives(ctx context.Context) ([]models.ArchiveIndexEntry, error)
	DeleteArchive(ctx context.Context, tournamentID int) ([]string, error)
}

type archiveService struct {
	store          storage.ObjectStore
	collector      Collector
	tournamentRepo repositories.TournamentRepository
	hub            Broadcaster
	logger         *slog.Logger

	indexUpdateAttempts int
	indexBackoffBase    time.Duration
	indexBackoffCap     time.Duration
	listRetryAttempts   int

	// indexMu сериализует писателей индекса внутри процесса; от чужих
	// процессов защищает только цикл retry+verify ниже.
	indexMu    sync.Mutex
	indexReads singleflight.Group
}

func NewArchiveService(
	store storage.ObjectStore,
	collector Collector,
	tournamentRepo repositories.TournamentRepository,
	hub Broadcaster,
	logger *slog.Logger,
) Archiver {
	return &archiveService{
		store:               store,
		collector:           collector,
		tournamentRepo:      tournamentRepo,
		hub:                 hub,
		logger:              logger,
		indexUpdateAttempts: defaultIndexUpdateAttempts,
		indexBackoffBase:    defaultIndexBackoffBase,
		indexBackoffCap:     defaultIndexBackoffCap,
		listRetryAttempts:   defaultListRetryAttempts,
	}
}

func snapshotKey(tournamentID int) string {
	return fmt.Sprintf("archives/tournament_%d.json", tournamentID)
}

// Archive собирает агрегат, записывает снапшот, обновляет индекс и
// штампует живую строку турнира. Отказ коллектора прерывает операцию —
// частичный снапшот не записывается никогда. Отказ индекса после записи
// объекта не отменяет архивацию: объект — граница долговечности, в
// результате выставляется Indexed=false и предупреждение.
func (s *archiveService) Archive(ctx context.Context, tournamentID int, archivedBy string) (*models.ArchiveResult, error) {
	if archivedBy == "" {
		return nil, ErrArchivedByRequired
	}

	s.broadcast(tournamentID, live.EventArchiveStarted, map[string]int{"tournament_id": tournamentID})

	snapshot, err := s.collector.BuildSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	version := versioning.CurrentVersion()
	archivedAt := time.Now().UTC()
	snapshot.Version = version
	snapshot.ArchivedAt = archivedAt
	snapshot.ArchivedBy = archivedBy
	snapshot.Metadata.ArchiveUIVersion = version

	// Первая сериализация даёт размер, который фиксируется в метаданных
	// до итоговой записи.
	preliminary, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot for tournament %d: %w", tournamentID, err)
	}
	snapshot.Metadata.FileSize = int64(len(preliminary))

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot for tournament %d: %w", tournamentID, err)
	}

	key := snapshotKey(tournamentID)
	putResult, err := s.store.Put(ctx, key, archiveContentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to write snapshot object (key: %s): %w", key, err)
	}

	result := &models.ArchiveResult{
		TournamentID: tournamentID,
		BlobKey:      key,
		BlobURL:      putResult.Location,
		FileSize:     putResult.Size,
		Version:      version,
		ArchivedAt:   archivedAt,
		Indexed:      true,
	}

	entry := models.ArchiveIndexEntry{
		TournamentID:   tournamentID,
		TournamentName: snapshot.Tournament.Name,
		ArchivedAt:     archivedAt,
		ArchivedBy:     archivedBy,
		FileSize:       putResult.Size,
		BlobURL:        putResult.Location,
		Metadata: models.IndexEntryMetadata{
			TotalTeams:       snapshot.Metadata.TotalTeams,
			TotalMatches:     snapshot.Metadata.TotalMatches,
			ArchiveUIVersion: version,
		},
	}

	if err := s.updateIndex(ctx,
		func(index *models.ArchiveIndex) { upsertIndexEntry(index, entry) },
		func(index *models.ArchiveIndex) bool { return indexHasEntry(index, entry) },
	); err != nil {
		s.logger.Warn("archive: snapshot written but index update failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		result.Indexed = false
		result.Warnings = append(result.Warnings, err.Error())
	}

	if err := s.tournamentRepo.StampArchive(ctx, tournamentID, version, archivedAt, archivedBy); err != nil {
		s.logger.Warn("archive: failed to stamp live tournament row",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to stamp live tournament row: %v", err))
	}

	s.broadcast(tournamentID, live.EventArchiveCompleted, result)
	return result, nil
}

// GetArchive читает снапшот напрямую из хранилища. Снапшоты, созданные
// до появления тегирования, не несут версии — она выводится по дате
// архивации на границе чтения.
func (s *archiveService) GetArchive(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	data, err := s.store.Get(ctx, snapshotKey(tournamentID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot for tournament %d: %w", tournamentID, err)
	}

	var snapshot models.TournamentSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for tournament %d: %w", tournamentID, err)
	}

	if snapshot.Version == "" {
		at := snapshot.ArchivedAt
		snapshot.Version = versioning.InferVersion(&at)
	}

	return &snapshot, nil
}

// ListArchives возвращает записи индекса. Листинг консультативный:
// если индекс ещё не виден (eventual consistency после чужой записи),
// после ограниченных повторов возвращается пустой список, а не ошибка.
// Одновременные вызовы делят одно чтение через singleflight.
func (s *archiveService) ListArchives(ctx context.Context) ([]models.ArchiveIndexEntry, error) {
	v, err, _ := s.indexReads.Do(archiveIndexKey, func() (interface{}, error) {
		for attempt := 0; attempt < s.listRetryAttempts; attempt++ {
			data, err := s.store.Get(ctx, archiveIndexKey)
			if err == nil {
				var index models.ArchiveIndex
				if unmarshalErr := json.Unmarshal(data, &index); unmarshalErr != nil {
					s.logger.Warn("archive: index object is corrupted, treating as empty",
						slog.Any("error", unmarshalErr))
					return []models.ArchiveIndexEntry{}, nil
				}
				return index.Archives, nil
			}
			if !errors.Is(err, storage.ErrObjectNotFound) {
				return nil, fmt.Errorf("failed to read archive index: %w", err)
			}
			if waitErr := s.sleep(ctx, s.backoff(attempt)); waitErr != nil {
				return nil, waitErr
			}
		}
		return []models.ArchiveIndexEntry{}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ArchiveIndexEntry), nil
}

// DeleteArchive удаляет объект снапшота, убирает запись из индекса и
// очищает архивный штамп живой строки. Удаление объекта и обновление
// индекса — независимые операции: отказ индекса после успешного
// удаления объекта понижается до предупреждения.
func (s *archiveService) DeleteArchive(ctx context.Context, tournamentID int) ([]string, error) {
	key := snapshotKey(tournamentID)

	exists, err := s.store.Head(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot existence (key: %s): %w", key, err)
	}
	if !exists {
		return nil, ErrArchiveNotFound
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to delete snapshot object (key: %s): %w", key, err)
	}

	warnings := make([]string, 0)

	if err := s.updateIndex(ctx,
		func(index *models.ArchiveIndex) { removeIndexEntry(index, tournamentID) },
		func(index *models.ArchiveIndex) bool { return !indexHasTournament(index, tournamentID) },
	); err != nil {
		s.logger.Warn("archive: object deleted but index entry removal failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		warnings = append(warnings, err.Error())
	}

	if err := s.tournamentRepo.ClearArchiveStamp(ctx, tournamentID); err != nil {
		if !errors.Is(err, repositories.ErrTournamentNotFound) {
			warnings = append(warnings, fmt.Sprintf("failed to clear archive stamp: %v", err))
		}
	}

	s.broadcast(tournamentID, live.EventArchiveDeleted, map[string]int{"tournament_id": tournamentID})
	return warnings, nil
}

// updateIndex — ограниченный оптимистичный цикл read-modify-write.
// Каждая попытка перечитывает индекс (отсутствующий или повреждённый
// объект трактуется как пустой индекс), применяет изменение,
// восстанавливает инварианты и перезаписывает документ целиком.
// Compare-and-swap у хранилища нет: после записи документ перечитывается,
// и если конкурирующий писатель затёр наше изменение, попытка повторяется.
// При истинно одновременных писателях это last-writer-wins, а не
// линеаризуемость; гарантируется лишь, что успешный вызов в итоге видит
// своё изменение сохранённым.
func (s *archiveService) updateIndex(ctx context.Context, apply func(*models.ArchiveIndex), verify func(*models.ArchiveIndex) bool) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	var lastErr error

	for attempt := 0; attempt < s.indexUpdateAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.backoff(attempt-1)); err != nil {
				return err
			}
		}

		index, err := s.readIndexForUpdate(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		apply(index)

		sort.SliceStable(index.Archives, func(i, j int) bool {
			return index.Archives[i].ArchivedAt.After(index.Archives[j].ArchivedAt)
		})
		index.TotalArchives = len(index.Archives)
		index.UpdatedAt = time.Now().UTC()
		index.Version = versioning.CurrentVersion()

		data, err := json.Marshal(index)
		if err != nil {
			return fmt.Errorf("failed to marshal archive index: %w", err)
		}

		if _, err := s.store.Put(ctx, archiveIndexKey, archiveContentType, data); err != nil {
			lastErr = err
			continue
		}

		// Перечитываем: запись могла быть затёрта конкурентом между нашим
		// чтением и записью. Нечитаемость после записи не считаем отказом.
		stored, err := s.readIndexForUpdate(ctx)
		if err != nil {
			return nil
		}
		if verify(stored) {
			return nil
		}
		lastErr = fmt.Errorf("stale write detected, index overwritten by a concurrent writer")
	}

	return fmt.Errorf("%w: %s after %d attempts: %v",
		ErrIndexUpdateFailed, archiveIndexKey, s.indexUpdateAttempts, lastErr)
}

func (s *archiveService) readIndexForUpdate(ctx context.Context) (*models.ArchiveIndex, error) {
	data, err := s.store.Get(ctx, archiveIndexKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return &models.ArchiveIndex{Archives: make([]models.ArchiveIndexEntry, 0)}, nil
		}
		return nil, err
	}

	var index models.ArchiveIndex
	if err := json.Unmarshal(data, &index); err != nil {
		// Повреждённый индекс восстанавливаем как пустой, а не падаем.
		s.logger.Warn("archive: index object is corrupted, rebuilding from empty", slog.Any("error", err))
		return &models.ArchiveIndex{Archives: make([]models.ArchiveIndexEntry, 0)}, nil
	}
	if index.Archives == nil {
		index.Archives = make([]models.ArchiveIndexEntry, 0)
	}
	return &index, nil
}

// backoff: base, 2*base, 4*base, ... с верхней границей cap.
func (s *archiveService) backoff(attempt int) time.Duration {
	d := s.indexBackoffBase << uint(attempt)
	if d > s.indexBackoffCap {
		d = s.indexBackoffCap
	}
	return d
}

func (s *archiveService) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *archiveService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	roomID := "tournament_" + strconv.Itoa(tournamentID)
	s.hub.BroadcastToRoom(roomID, live.Message{
		Type:    eventType,
		Payload: payload,
		RoomID:  roomID,
	})
}

func upsertIndexEntry(index *models.ArchiveIndex, entry models.ArchiveIndexEntry) {
	for i := range index.Archives {
		if index.Archives[i].TournamentID == entry.TournamentID {
			index.Archives[i] = entry
			return
		}
	}
	index.Archives = append(index.Archives, entry)
}

func indexHasEntry(index *models.ArchiveIndex, entry models.ArchiveIndexEntry) bool {
	for _, e := range index.Archives {
		if e.TournamentID == entry.TournamentID && e.ArchivedAt.Equal(entry.ArchivedAt) {
			return true
		}
	}
	return false
}

func indexHasTournament(index *models.ArchiveIndex, tournamentID int) bool {
	for _, e := range index.Archives {
		if e.TournamentID == tournamentID {
			return true
		}
	}
	return false
}

func removeIndexEntry(index *models.ArchiveIndex, tournamentID int) {
	filtered := index.Archives[:0]
	for _, e := range index.Archives {
		if e.TournamentID != tournamentID {
			filtered = append(filtered, e)
		}
	}
	index.Archives = filtered
}
