package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// Tournament представляет турнир.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Venue       *string          `json:"venue,omitempty" db:"venue"`
	Format      string           `json:"format" db:"format"`
	Rules       *string          `json:"rules,omitempty" db:"rules"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	LogoKey     *string          `json:"-" db:"logo_key"`

	// Archive stamp columns. Empty until the tournament has been archived;
	// cleared again when its archive is deleted.
	ArchiveUIVersion *string    `json:"archive_ui_version,omitempty" db:"archive_ui_version"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	ArchivedBy       *string    `json:"archived_by,omitempty" db:"archived_by"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams     []Team     `json:"teams,omitempty" db:"-"`
	Matches   []Match    `json:"matches,omitempty" db:"-"`
	Standings []Standing `json:"standings,omitempty" db:"-"`
}
