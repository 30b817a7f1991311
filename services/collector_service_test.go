package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func testTournament(id int) *models.Tournament {
	return &models.Tournament{
		ID:        id,
		Name:      "Spring Cup",
		Format:    "round_robin",
		StartDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusCompleted,
		CreatedAt: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newTestCollector(
	tournamentRepo *stubTournamentRepo,
	teams *stubTeamRepo,
	matches *stubMatchRepo,
	standings *stubStandingRepo,
	results *stubResultRepo,
	files *stubFileRepo,
	store *memObjectStore,
) Collector {
	return NewCollectorService(tournamentRepo, teams, matches, standings, results, files, store, testLogger())
}

func TestBuildSnapshotAssemblesAggregate(t *testing.T) {
	store := newMemObjectStore()
	store.putRaw("files/42/regulations.pdf", []byte("%PDF"))

	teams := []models.Team{
		{ID: 1, TournamentID: 42, Name: "Falcons", Players: []models.Player{{ID: 1, TeamID: 1, Name: "A"}}},
		{ID: 2, TournamentID: 42, Name: "Wolves"},
	}
	matches := []models.Match{
		{ID: 10, TournamentID: 42, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchStatusCompleted,
			HomePeriods: strPtr("[2,1]"), AwayPeriods: strPtr("1,1")},
		{ID: 11, TournamentID: 42, HomeTeamID: 2, AwayTeamID: 1, Status: models.MatchStatusScheduled},
		{ID: 12, TournamentID: 42, HomeTeamID: 1, AwayTeamID: 2, Status: models.MatchStatusCompleted,
			HomePeriods: strPtr("2"), AwayPeriods: strPtr("")},
	}
	standings := []models.Standing{
		{ID: 1, TournamentID: 42, Block: "A", TeamID: 1, Points: 6},
		{ID: 2, TournamentID: 42, Block: "A", TeamID: 2, Points: 3},
		{ID: 3, TournamentID: 42, Block: "B", TeamID: 1, Points: 1},
	}
	files := []models.TournamentFile{
		{ID: 1, TournamentID: 42, Kind: models.FileKindRegulations, BlobKey: "files/42/regulations.pdf"},
		{ID: 2, TournamentID: 42, Kind: models.FileKindSchedule, BlobKey: "files/42/schedule.pdf"}, // объекта нет
	}

	collector := newTestCollector(
		&stubTournamentRepo{tournament: testTournament(42)},
		&stubTeamRepo{teams: teams},
		&stubMatchRepo{matches: matches},
		&stubStandingRepo{standings: standings},
		&stubResultRepo{results: []models.HeadToHeadResult{{ID: 1, TournamentID: 42, TeamAID: 1, TeamBID: 2}}},
		&stubFileRepo{files: files},
		store,
	)

	snapshot, err := collector.BuildSnapshot(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "Spring Cup", snapshot.Tournament.Name)
	assert.Equal(t, 2, snapshot.Metadata.TotalTeams)
	assert.Equal(t, 3, snapshot.Metadata.TotalMatches)
	assert.Equal(t, 2, snapshot.Metadata.CompletedMatches)
	assert.Equal(t, 2, snapshot.Metadata.BlocksCount)

	// Суммы по периодам из разных исторических форматов.
	assert.Equal(t, 3, snapshot.Matches[0].HomeGoals)
	assert.Equal(t, 2, snapshot.Matches[0].AwayGoals)
	assert.Equal(t, 0, snapshot.Matches[1].HomeGoals)
	assert.Equal(t, 2, snapshot.Matches[2].HomeGoals)
	assert.Equal(t, 0, snapshot.Matches[2].AwayGoals)

	// Группировка таблиц по блокам с сохранением порядка.
	require.Len(t, snapshot.Standings, 2)
	assert.Equal(t, "A", snapshot.Standings[0].Block)
	assert.Len(t, snapshot.Standings[0].Rows, 2)
	assert.Equal(t, "B", snapshot.Standings[1].Block)

	// Флаги документов: строка без объекта в хранилище флага не даёт.
	assert.True(t, snapshot.PDFInfo.HasRegulations)
	assert.False(t, snapshot.PDFInfo.HasSchedule)
	assert.Equal(t, 2, snapshot.PDFInfo.TotalFiles)

	// Версию и штамп проставляет архиватор, не коллектор.
	assert.Empty(t, snapshot.Version)
	assert.True(t, snapshot.ArchivedAt.IsZero())
}

func TestBuildSnapshotTournamentNotFound(t *testing.T) {
	collector := newTestCollector(
		&stubTournamentRepo{getErr: repositories.ErrTournamentNotFound},
		&stubTeamRepo{}, &stubMatchRepo{}, &stubStandingRepo{}, &stubResultRepo{}, &stubFileRepo{},
		newMemObjectStore(),
	)

	_, err := collector.BuildSnapshot(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestBuildSnapshotToleratesMissingOptionalTables(t *testing.T) {
	collector := newTestCollector(
		&stubTournamentRepo{tournament: testTournament(7)},
		&stubTeamRepo{teams: []models.Team{{ID: 1, TournamentID: 7, Name: "Solo"}}},
		&stubMatchRepo{err: undefinedTableErr("matches")},
		&stubStandingRepo{err: undefinedTableErr("standings")},
		&stubResultRepo{err: undefinedTableErr("head_to_head_results")},
		&stubFileRepo{err: undefinedTableErr("tournament_files")},
		newMemObjectStore(),
	)

	snapshot, err := collector.BuildSnapshot(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Metadata.TotalTeams)
	assert.Equal(t, 0, snapshot.Metadata.TotalMatches)
	assert.Empty(t, snapshot.Standings)
	assert.Empty(t, snapshot.Results)
}

func TestBuildSnapshotPropagatesRealQueryErrors(t *testing.T) {
	collector := newTestCollector(
		&stubTournamentRepo{tournament: testTournament(7)},
		&stubTeamRepo{err: assert.AnError},
		&stubMatchRepo{}, &stubStandingRepo{}, &stubResultRepo{}, &stubFileRepo{},
		newMemObjectStore(),
	)

	_, err := collector.BuildSnapshot(context.Background(), 7)
	assert.Error(t, err)
}
