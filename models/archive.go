package models

import "time"

// SnapshotMetadata — сводные показатели снапшота, дублируются в записи
// глобального индекса.
type SnapshotMetadata struct {
	TotalTeams       int    `json:"total_teams"`
	TotalMatches     int    `json:"total_matches"`
	CompletedMatches int    `json:"completed_matches"`
	BlocksCount      int    `json:"blocks_count"`
	ArchiveUIVersion string `json:"archive_ui_version"`
	FileSize         int64  `json:"file_size"`
}

// TournamentSnapshot — денормализованное неизменяемое представление
// турнира на момент архивации. Записывается в объектное хранилище один
// раз; повторная архивация перезаписывает объект целиком.
type TournamentSnapshot struct {
	Version    string             `json:"version"`
	ArchivedAt time.Time          `json:"archived_at"`
	ArchivedBy string             `json:"archived_by"`
	Tournament Tournament         `json:"tournament"`
	Teams      []Team             `json:"teams"`
	Matches    []Match            `json:"matches"`
	Standings  []StandingBlock    `json:"standings"`
	Results    []HeadToHeadResult `json:"results"`
	PDFInfo    PDFInfo            `json:"pdf_info"`
	Metadata   SnapshotMetadata   `json:"metadata"`
}

// IndexEntryMetadata — урезанный дайджест SnapshotMetadata для индекса.
type IndexEntryMetadata struct {
	TotalTeams       int    `json:"total_teams"`
	TotalMatches     int    `json:"total_matches"`
	ArchiveUIVersion string `json:"archive_ui_version"`
}

// ArchiveIndexEntry — одна запись глобального индекса архивов.
type ArchiveIndexEntry struct {
	TournamentID   int                `json:"tournament_id"`
	TournamentName string             `json:"tournament_name"`
	ArchivedAt     time.Time          `json:"archived_at"`
	ArchivedBy     string             `json:"archived_by"`
	FileSize       int64              `json:"file_size"`
	BlobURL        string             `json:"blob_url"`
	Metadata       IndexEntryMetadata `json:"metadata"`
}

// ArchiveIndex — единственный разделяемый изменяемый документ подсистемы.
// Инварианты: не более одной записи на турнир, сортировка по archived_at
// по убыванию, TotalArchives == len(Archives). Обновляется только целиком.
type ArchiveIndex struct {
	Version       string              `json:"version"`
	UpdatedAt     time.Time           `json:"updated_at"`
	TotalArchives int                 `json:"total_archives"`
	Archives      []ArchiveIndexEntry `json:"archives"`
}

// ArchiveResult — результат операции архивации. Indexed=false означает,
// что объект записан (данные в сохранности), но обновление индекса
// исчерпало попытки; listing может отставать.
type ArchiveResult struct {
	TournamentID int       `json:"tournament_id"`
	BlobKey      string    `json:"blob_key"`
	BlobURL      string    `json:"blob_url"`
	FileSize     int64     `json:"file_size"`
	Version      string    `json:"version"`
	ArchivedAt   time.Time `json:"archived_at"`
	Indexed      bool      `json:"indexed"`
	Warnings     []string  `json:"warnings,omitempty"`
}
