package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/tournament-archive/models"
)

type TeamRepository interface {
	// ListByTournament возвращает команды турнира вместе с ростерами.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	query := `
		SELECT id, tournament_id, name, block, logo_key, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	index := make(map[int]int) // team id -> position in teams
	for rows.Next() {
		var t models.Team
		if scanErr := rows.Scan(&t.ID, &t.TournamentID, &t.Name, &t.Block, &t.LogoKey, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return teams, nil
	}

	players, err := r.listPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if pos, ok := index[p.TeamID]; ok {
			teams[pos].Players = append(teams[pos].Players, p)
		}
	}

	return teams, nil
}

func (r *postgresTeamRepository) listPlayers(ctx context.Context, tournamentID int) ([]models.Player, error) {
	query := `
		SELECT r.id, r.team_id, r.name, r.number, r.position
		FROM rosters r
		JOIN teams t ON t.id = r.team_id
		WHERE t.tournament_id = $1
		ORDER BY r.team_id, r.number NULLS LAST, r.name`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Number, &p.Position); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
