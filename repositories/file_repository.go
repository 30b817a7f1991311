package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-archive/models"
)

type FileRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentFile, error)
}

type postgresFileRepository struct {
	db *sql.DB
}

func NewPostgresFileRepository(db *sql.DB) FileRepository {
	return &postgresFileRepository{db: db}
}

func (r *postgresFileRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentFile, error) {
	query := `
		SELECT id, tournament_id, kind, name, blob_key, uploaded_at
		FROM tournament_files
		WHERE tournament_id = $1
		ORDER BY uploaded_at`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.TournamentFile, 0)
	for rows.Next() {
		var f models.TournamentFile
		if scanErr := rows.Scan(&f.ID, &f.TournamentID, &f.Kind, &f.Name, &f.BlobKey, &f.UploadedAt); scanErr != nil {
			return nil, scanErr
		}
		files = append(files, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
