package models

import "time"

type TournamentFileKind string

const (
	FileKindRegulations TournamentFileKind = "regulations"
	FileKindSchedule    TournamentFileKind = "schedule"
	FileKindProtocol    TournamentFileKind = "protocol"
)

// TournamentFile — строка таблицы документов турнира; сам файл лежит
// в объектном хранилище под BlobKey.
type TournamentFile struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	Kind         TournamentFileKind `json:"kind" db:"kind"`
	Name         string             `json:"name" db:"name"`
	BlobKey      string             `json:"-" db:"blob_key"`
	UploadedAt   time.Time          `json:"uploaded_at" db:"uploaded_at"`
}

// PDFInfo — флаги наличия документов турнира в снапшоте.
type PDFInfo struct {
	HasRegulations bool `json:"has_regulations"`
	HasSchedule    bool `json:"has_schedule"`
	HasProtocols   bool `json:"has_protocols"`
	TotalFiles     int  `json:"total_files"`
}
