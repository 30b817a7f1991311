package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-archive/live"
	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/Dosada05/tournament-archive/storage"
)

// deletionOrder — зависимые таблицы турнира в порядке обхода: дети
// раньше родителей, чтобы не ловить каскадные нарушения внешних ключей.
// Шаги выполняются строго последовательно.
var deletionOrder = []string{
	"live_matches",
	"match_results",
	"matches",
	"match_blocks",
	"standings",
	"head_to_head_results",
	"rosters",
	"teams",
	"tournament_rules",
	"tournament_files",
	"notifications",
	"tournament_history",
	"tournament_archives",
}

const investigationSampleLimit = 10

// DeletionReconciler каскадно удаляет все строки турнира из зависимых
// таблиц и затем основную строку. Сбои некритичных шагов записываются
// в леджер и не прерывают каскад; только отказ удаления основной строки
// после верификации — терминальный.
//
// Предполагается, что во время удаления никто больше не пишет строки
// этого турнира; это документированное допущение, а не блокировка.
type DeletionReconciler interface {
	ReconcileDeletion(ctx context.Context, tournamentID int) (*models.DeletionReport, error)
}

type deletionService struct {
	cleanupRepo    repositories.CleanupRepository
	tournamentRepo repositories.TournamentRepository
	store          storage.ObjectStore
	hub            Broadcaster
	logger         *slog.Logger
}

func NewDeletionService(
	cleanupRepo repositories.CleanupRepository,
	tournamentRepo repositories.TournamentRepository,
	store storage.ObjectStore,
	hub Broadcaster,
	logger *slog.Logger,
) DeletionReconciler {
	return &deletionService{
		cleanupRepo:    cleanupRepo,
		tournamentRepo: tournamentRepo,
		store:          store,
		hub:            hub,
		logger:         logger,
	}
}

func (s *deletionService) ReconcileDeletion(ctx context.Context, tournamentID int) (*models.DeletionReport, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("deletion: tournament lookup: %w", err)
	}

	report := &models.DeletionReport{
		TournamentID: tournamentID,
		StartedAt:    time.Now().UTC(),
		Warnings:     make([]string, 0),
	}

	// Шаг 0: внешние объекты (логотипы, документы), на которые ссылаются
	// строки, обречённые на каскад. Только предупреждения.
	s.cleanupBlobs(ctx, tournamentID, report)

	// Каскад по зависимым таблицам.
	for _, table := range deletionOrder {
		rows, err := s.cleanupRepo.DeleteByTournament(ctx, table, tournamentID)
		if err != nil {
			if repositories.IsUndefinedTable(err) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("table %s does not exist, skipped", table))
			} else {
				s.logger.Warn("deletion: step failed, continuing cascade",
					slog.Int("tournament_id", tournamentID), slog.String("table", table), slog.Any("error", err))
				report.Warnings = append(report.Warnings, fmt.Sprintf("failed to delete from %s: %v", table, err))
			}
			continue
		}
		s.broadcastStep(tournamentID, table, rows)
	}

	// Верификация: остаточные строки принудительно удаляются по месту.
	s.verifyAndForceDelete(ctx, tournamentID, report)

	// Финальный шаг: основная строка турнира.
	if err := s.tournamentRepo.Delete(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			// Строку уже удалил кто-то другой; каскад свою работу сделал.
			report.Warnings = append(report.Warnings, "tournament row was already absent")
		} else {
			report.Outcome = models.DeletionFailed
			report.PartialDeletion = true
			report.FailureCause = fmt.Sprintf("failed to delete tournament row: %v", err)
			report.Investigation = s.investigate(ctx, tournamentID)
			report.FinishedAt = time.Now().UTC()

			s.logger.Error("deletion: terminal failure, tournament row persists",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			s.broadcast(tournamentID, live.EventDeletionFailed, report)
			return report, fmt.Errorf("%w: tournament %d", ErrDeletionFailed, tournamentID)
		}
	}

	report.Outcome = models.DeletionCompleted
	report.FinishedAt = time.Now().UTC()
	s.broadcast(tournamentID, live.EventDeletionCompleted, report)
	return report, nil
}

func (s *deletionService) cleanupBlobs(ctx context.Context, tournamentID int, report *models.DeletionReport) {
	keys, err := s.cleanupRepo.ListBlobKeys(ctx, tournamentID)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("failed to list blob keys: %v", err))
		return
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("failed to delete blob %s: %v", key, err))
		}
	}
}

// verifyAndForceDelete перепроверяет каждую зависимую таблицу и
// добивает остаточные строки; повторный сбой получает собственную
// запись в леджере.
func (s *deletionService) verifyAndForceDelete(ctx context.Context, tournamentID int, report *models.DeletionReport) {
	for _, table := range deletionOrder {
		count, err := s.cleanupRepo.CountByTournament(ctx, table, tournamentID)
		if err != nil {
			if !repositories.IsUndefinedTable(err) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("verification of %s failed: %v", table, err))
			}
			continue
		}
		if count == 0 {
			continue
		}

		s.logger.Warn("deletion: residual rows found, forcing delete",
			slog.Int("tournament_id", tournamentID), slog.String("table", table), slog.Int64("rows", count))

		if _, err := s.cleanupRepo.DeleteByTournament(ctx, table, tournamentID); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("forced delete of %s failed: %v", table, err))
		}
	}
}

// investigate собирает для отчёта таблицы, всё ещё содержащие строки
// турнира, — обычно именно они держат внешний ключ, из-за которого не
// удалилась основная строка.
func (s *deletionService) investigate(ctx context.Context, tournamentID int) []models.ResidualReference {
	residuals := make([]models.ResidualReference, 0)
	for _, table := range deletionOrder {
		count, err := s.cleanupRepo.CountByTournament(ctx, table, tournamentID)
		if err != nil || count == 0 {
			continue
		}
		ref := models.ResidualReference{Table: table, Rows: count}
		if ids, err := s.cleanupRepo.SampleIDs(ctx, table, tournamentID, investigationSampleLimit); err == nil {
			ref.SampleIDs = ids
		}
		residuals = append(residuals, ref)
	}
	return residuals
}

func (s *deletionService) broadcastStep(tournamentID int, table string, rows int64) {
	s.broadcast(tournamentID, live.EventDeletionStep, map[string]interface{}{
		"tournament_id": tournamentID,
		"table":         table,
		"rows_deleted":  rows,
	})
}

func (s *deletionService) broadcast(tournamentID int, eventType string, payload interface{}) {
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
