package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-archive/models"
	"github.com/Dosada05/tournament-archive/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullyPopulatedTables() map[string][]int {
	tables := make(map[string][]int)
	for i, table := range deletionOrder {
		tables[table] = []int{i*10 + 1, i*10 + 2}
	}
	return tables
}

func newTestReconciler(cleanup *fakeCleanupRepo, repo *stubTournamentRepo, store *memObjectStore) DeletionReconciler {
	return NewDeletionService(cleanup, repo, store, nil, testLogger())
}

func TestReconcileDeletionCompletes(t *testing.T) {
	cleanup := newFakeCleanupRepo(fullyPopulatedTables())
	cleanup.blobKeys = []string{"logos/42.png", "files/42/regulations.pdf"}
	repo := &stubTournamentRepo{tournament: testTournament(42)}
	store := newMemObjectStore()
	store.putRaw("logos/42.png", []byte("img"))
	store.putRaw("files/42/regulations.pdf", []byte("%PDF"))

	report, err := newTestReconciler(cleanup, repo, store).ReconcileDeletion(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, models.DeletionCompleted, report.Outcome)
	assert.False(t, report.PartialDeletion)
	assert.Empty(t, report.Warnings)
	assert.True(t, repo.deleted)

	// Все зависимые таблицы пусты, внешние объекты удалены.
	for _, table := range deletionOrder {
		assert.Zero(t, cleanup.remaining(table), "table %s still holds rows", table)
	}
	assert.False(t, store.has("logos/42.png"))
	assert.False(t, store.has("files/42/regulations.pdf"))
}

func TestReconcileDeletionTournamentNotFound(t *testing.T) {
	repo := &stubTournamentRepo{getErr: repositories.ErrTournamentNotFound}
	_, err := newTestReconciler(newFakeCleanupRepo(fullyPopulatedTables()), repo, newMemObjectStore()).ReconcileDeletion(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestReconcileDeletionToleratesSingleStepFailure(t *testing.T) {
	cleanup := newFakeCleanupRepo(fullyPopulatedTables())
	cleanup.failDeleteOnce["standings"] = true
	repo := &stubTournamentRepo{tournament: testTournament(42)}

	report, err := newTestReconciler(cleanup, repo, newMemObjectStore()).ReconcileDeletion(context.Background(), 42)
	require.NoError(t, err)

	// Каскад дошёл до верификации, остаток добит принудительно, основная
	// строка удалена — ровно одно предупреждение в леджере.
	assert.Equal(t, models.DeletionCompleted, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "standings")
	assert.Zero(t, cleanup.remaining("standings"))
	assert.True(t, repo.deleted)
}

func TestReconcileDeletionSkipsMissingOptionalTables(t *testing.T) {
	tables := fullyPopulatedTables()
	delete(tables, "notifications")
	cleanup := newFakeCleanupRepo(tables)
	cleanup.missingTables["notifications"] = true
	repo := &stubTournamentRepo{tournament: testTournament(42)}

	report, err := newTestReconciler(cleanup, repo, newMemObjectStore()).ReconcileDeletion(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, models.DeletionCompleted, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "notifications")
	assert.Contains(t, report.Warnings[0], "skipped")
	assert.True(t, repo.deleted)
}

func TestReconcileDeletionTerminalFailure(t *testing.T) {
	cleanup := newFakeCleanupRepo(fullyPopulatedTables())
	// Строки teams не удаляются ни каскадом, ни принудительно,
	// поэтому основная строка держится на внешнем ключе.
	cleanup.failDeleteAlways["teams"] = true
	repo := &stubTournamentRepo{
		tournament: testTournament(42),
		deleteErr:  &pq.Error{Code: "23503", Message: "violates foreign key constraint"},
	}

	report, err := newTestReconciler(cleanup, repo, newMemObjectStore()).ReconcileDeletion(context.Background(), 42)
	require.ErrorIs(t, err, ErrDeletionFailed)
	require.NotNil(t, report)

	assert.Equal(t, models.DeletionFailed, report.Outcome)
	assert.True(t, report.PartialDeletion)
	assert.NotEmpty(t, report.FailureCause)
	assert.False(t, repo.deleted)

	// Расследование называет таблицу с остаточными строками.
	require.NotEmpty(t, report.Investigation)
	found := false
	for _, ref := range report.Investigation {
		if ref.Table == "teams" {
			found = true
			assert.Equal(t, int64(2), ref.Rows)
			assert.NotEmpty(t, ref.SampleIDs)
		}
	}
	assert.True(t, found, "investigation must include the teams table")
}
