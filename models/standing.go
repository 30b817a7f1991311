package models

import "time"

// Standing — строка турнирной таблицы внутри одного блока.
type Standing struct {
	ID              int       `json:"id" db:"id"`
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	Block           string    `json:"block" db:"block"`
	TeamID          int       `json:"team_id" db:"team_id"`
	Points          int       `json:"points" db:"points"`
	GamesPlayed     int       `json:"games_played" db:"games_played"`
	Wins            int       `json:"wins" db:"wins"`
	Draws           int       `json:"draws" db:"draws"`
	Losses          int       `json:"losses" db:"losses"`
	GoalsFor        int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst    int       `json:"goals_against" db:"goals_against"`
	GoalDifference  int       `json:"goal_difference" db:"goal_difference"`
	Rank            *int      `json:"rank,omitempty" db:"rank"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// StandingBlock groups the ranked rows of one block for the snapshot payload.
type StandingBlock struct {
	Block string     `json:"block"`
	Rows  []Standing `json:"rows"`
}
