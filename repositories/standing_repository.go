package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-archive/models"
)

type StandingRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	query := `
		SELECT
			id, tournament_id, block, team_id, points, games_played,
			wins, draws, losses, goals_for, goals_against, goal_difference,
			rank, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY block, rank NULLS LAST, points DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.Block, &s.TeamID, &s.Points, &s.GamesPlayed,
			&s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference,
			&s.Rank, &s.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
