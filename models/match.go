package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// Match представляет матч турнира вместе с полями результата.
//
// HomePeriods/AwayPeriods хранят счёт по периодам в одном из трёх
// исторических форматов: JSON-массив ("[2,1]"), список через запятую
// ("2,1") или одно число ("2"). Итоговые HomeGoals/AwayGoals вычисляются
// коллектором и в БД не хранятся.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	BlockID      *int        `json:"block_id,omitempty" db:"block_id"`
	Round        *int        `json:"round,omitempty" db:"round"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	Date         time.Time   `json:"date" db:"date"`
	Status       MatchStatus `json:"status" db:"status"`
	HomePeriods  *string     `json:"home_periods,omitempty" db:"home_periods"`
	AwayPeriods  *string     `json:"away_periods,omitempty" db:"away_periods"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`

	HomeGoals int `json:"home_goals" db:"-"`
	AwayGoals int `json:"away_goals" db:"-"`
}
