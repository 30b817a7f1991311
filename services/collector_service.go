package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/Dosada05/tournament-archive/storage"
)

// Collector собирает согласованное агрегированное представление одного
// турнира из реляционных таблиц. Результат ещё не несёт версии и штампа
// архивации — их проставляет ArchiveService при записи.
type Collector interface {
	BuildSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error)
}

type collectorService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	resultRepo     repositories.ResultRepository
	fileRepo       repositories.FileRepository
	store          storage.ObjectStore
	logger         *slog.Logger
}

func NewCollectorService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	resultRepo repositories.ResultRepository,
	fileRepo repositories.FileRepository,
	store storage.ObjectStore,
	logger *slog.Logger,
) Collector {
	return &collectorService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		resultRepo:     resultRepo,
		fileRepo:       fileRepo,
		store:          store,
		logger:         logger,
	}
}

// BuildSnapshot выполняет фиксированную последовательность чтений:
// шапка → команды с ростерами → матчи с результатами → таблицы →
// личные встречи → документы. Отсутствие опциональной таблицы (42P01)
// трактуется как ноль строк, а не как ошибка.
func (s *collectorService) BuildSnapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("collector: tournament header: %w", err)
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		if !repositories.IsUndefinedTable(err) {
			return nil, fmt.Errorf("collector: teams: %w", err)
		}
		teams = nil
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		if !repositories.IsUndefinedTable(err) {
			return nil, fmt.Errorf("collector: matches: %w", err)
		}
		matches = nil
	}
	completedMatches := 0
	for i := range matches {
		matches[i].HomeGoals = PeriodScoreTotal(matches[i].HomePeriods)
		matches[i].AwayGoals = PeriodScoreTotal(matches[i].AwayPeriods)
		if matches[i].Status == models.MatchStatusCompleted {
			completedMatches++
		}
	}

	standings, err := s.standingRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		if !repositories.IsUndefinedTable(err) {
			return nil, fmt.Errorf("collector: standings: %w", err)
		}
		standings = nil
	}
	blocks := groupStandingsByBlock(standings)

	results, err := s.resultRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		if !repositories.IsUndefinedTable(err) {
			return nil, fmt.Errorf("collector: head-to-head results: %w", err)
		}
		results = nil
	}

	files, err := s.fileRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		if !repositories.IsUndefinedTable(err) {
			return nil, fmt.Errorf("collector: files: %w", err)
		}
		files = nil
	}
	pdfInfo := s.buildPDFInfo(ctx, files)

	snapshot := &models.TournamentSnapshot{
		Tournament: *tournament,
		Teams:      teams,
		Matches:    matches,
		Standings:  blocks,
		Results:    results,
		PDFInfo:    pdfInfo,
		Metadata: models.SnapshotMetadata{
			TotalTeams:       len(teams),
			TotalMatches:     len(matches),
			CompletedMatches: completedMatches,
			BlocksCount:      len(blocks),
		},
	}

	return snapshot, nil
}

// buildPDFInfo сверяет строки документов с фактическим наличием объектов
// в хранилище. Ошибка Head не фатальна: флаг остаётся false.
func (s *collectorService) buildPDFInfo(ctx context.Context, files []models.TournamentFile) models.PDFInfo {
	info := models.PDFInfo{TotalFiles: len(files)}
	for _, f := range files {
		exists, err := s.store.Head(ctx, f.BlobKey)
		if err != nil {
			s.logger.Warn("collector: file existence check failed",
				slog.String("blob_key", f.BlobKey), slog.Any("error", err))
			continue
		}
		if !exists {
			continue
		}
		switch f.Kind {
		case models.FileKindRegulations:
			info.HasRegulations = true
		case models.FileKindSchedule:
			info.HasSchedule = true
		case models.FileKindProtocol:
			info.HasProtocols = true
		}
	}
	return info
}

func groupStandingsByBlock(standings []models.Standing) []models.StandingBlock {
	blocks := make([]models.StandingBlock, 0)
	index := make(map[string]int)
	for _, row := range standings {
		pos, ok := index[row.Block]
		if !ok {
			pos = len(blocks)
			index[row.Block] = pos
			blocks = append(blocks, models.StandingBlock{Block: row.Block})
		}
		blocks[pos].Rows = append(blocks[pos].Rows, row)
	}
	return blocks
}
