package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/tournament-archive/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentInUse    = errors.New("tournament is referenced by dependent rows")
)

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	StampArchive(ctx context.Context, id int, version string, archivedAt time.Time, archivedBy string) error
	ClearArchiveStamp(ctx context.Context, id int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT
			id, name, description, venue, format, rules,
			start_date, end_date, status, created_at, logo_key,
			archive_ui_version, archived_at, archived_by
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.Venue, &t.Format, &t.Rules,
		&t.StartDate, &t.EndDate, &t.Status, &t.CreatedAt, &t.LogoKey,
		&t.ArchiveUIVersion, &t.ArchivedAt, &t.ArchivedBy,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

// StampArchive записывает на живую строку турнира версию, время и автора
// архивации после успешной записи снапшота.
func (r *postgresTournamentRepository) StampArchive(ctx context.Context, id int, version string, archivedAt time.Time, archivedBy string) error {
	executor := r.getExecutor(nil)
	query := `
		UPDATE tournaments
		SET archive_ui_version = $1, archived_at = $2, archived_by = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, version, archivedAt, archivedBy, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ClearArchiveStamp обнуляет архивные колонки при удалении архива.
func (r *postgresTournamentRepository) ClearArchiveStamp(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	query := `
		UPDATE tournaments
		SET archive_ui_version = NULL, archived_at = NULL, archived_by = NULL
		WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			// FK из зависимой таблицы всё ещё указывает на турнир.
			return ErrTournamentInUse
		}
	}
	return err
}
