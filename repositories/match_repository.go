package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-archive/models"
)

type MatchRepository interface {
	// ListByTournament возвращает матчи турнира вместе с полями результата
	// из match_results (LEFT JOIN: матч мог ещё не быть сыгран).
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `
		SELECT
			m.id, m.tournament_id, m.block_id, m.round,
			m.home_team_id, m.away_team_id, m.date, m.status,
			mr.home_periods, mr.away_periods, mr.winner_team_id
		FROM matches m
		LEFT JOIN match_results mr ON mr.match_id = m.id
		WHERE m.tournament_id = $1
		ORDER BY m.date, m.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.BlockID, &m.Round,
			&m.HomeTeamID, &m.AwayTeamID, &m.Date, &m.Status,
			&m.HomePeriods, &m.AwayPeriods, &m.WinnerTeamID,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
