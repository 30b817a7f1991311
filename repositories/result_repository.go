package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-archive/models"
)

type ResultRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.HeadToHeadResult, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.HeadToHeadResult, error) {
	query := `
		SELECT
			id, tournament_id, team_a_id, team_b_id,
			team_a_goals, team_b_goals, team_a_wins, team_b_wins
		FROM head_to_head_results
		WHERE tournament_id = $1
		ORDER BY team_a_id, team_b_id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.HeadToHeadResult, 0)
	for rows.Next() {
		var h models.HeadToHeadResult
		if scanErr := rows.Scan(
			&h.ID, &h.TournamentID, &h.TeamAID, &h.TeamBID,
			&h.TeamAGoals, &h.TeamBGoals, &h.TeamAWins, &h.TeamBWins,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
