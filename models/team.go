package models

import "time"

// Team представляет команду-участника турнира.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Block        *string   `json:"block,omitempty" db:"block"`
	LogoKey      *string   `json:"-" db:"logo_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Roster, populated from the rosters table by the collector.
	Players []Player `json:"players,omitempty" db:"-"`
}

// Player — строка ростера команды.
type Player struct {
	ID       int     `json:"id" db:"id"`
	TeamID   int     `json:"team_id" db:"team_id"`
	Name     string  `json:"name" db:"name"`
	Number   *int    `json:"number,omitempty" db:"number"`
	Position *string `json:"position,omitempty" db:"position"`
}
