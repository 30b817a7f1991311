package models

// HeadToHeadResult — агрегированный личный результат пары команд,
// используется при равенстве очков в таблице.
type HeadToHeadResult struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	TeamAID      int `json:"team_a_id" db:"team_a_id"`
	TeamBID      int `json:"team_b_id" db:"team_b_id"`
	TeamAGoals   int `json:"team_a_goals" db:"team_a_goals"`
	TeamBGoals   int `json:"team_b_goals" db:"team_b_goals"`
	TeamAWins    int `json:"team_a_wins" db:"team_a_wins"`
	TeamBWins    int `json:"team_b_wins" db:"team_b_wins"`
}
