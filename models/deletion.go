package models

import "time"

type DeletionOutcome string

const (
	DeletionCompleted DeletionOutcome = "completed"
	DeletionFailed    DeletionOutcome = "failed"
)

// ResidualReference описывает строки, оставшиеся в зависимой таблице
// после каскада; заполняется расследованием при отказе удаления
// основной строки турнира.
type ResidualReference struct {
	Table     string `json:"table"`
	Rows      int64  `json:"rows"`
	SampleIDs []int  `json:"sample_ids,omitempty"`
}

// DeletionReport — итог каскадного удаления одного турнира.
//
// Outcome=completed: основная строка удалена, Warnings может содержать
// некритичные сбои шагов. Outcome=failed: основная строка осталась,
// FailureCause и Investigation описывают причину; PartialDeletion
// сигнализирует, что зависимые данные при этом уже удалены.
type DeletionReport struct {
	TournamentID    int                 `json:"tournament_id"`
	Outcome         DeletionOutcome     `json:"outcome"`
	PartialDeletion bool                `json:"partial_deletion"`
	Warnings        []string            `json:"warnings,omitempty"`
	FailureCause    string              `json:"failure_cause,omitempty"`
	Investigation   []ResidualReference `json:"investigation,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	FinishedAt      time.Time           `json:"finished_at"`
}
