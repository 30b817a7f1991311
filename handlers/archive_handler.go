package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-archive/services"
)

type ArchiveHandler struct {
	archiver   services.Archiver
	reconciler services.DeletionReconciler
}

func NewArchiveHandler(archiver services.Archiver, reconciler services.DeletionReconciler) *ArchiveHandler {
	return &ArchiveHandler{
		archiver:   archiver,
		reconciler: reconciler,
	}
}

// ArchiveHandler обрабатывает POST /tournaments/{tournamentID}/archive
func (h *ArchiveHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ArchivedBy string `json:"archived_by"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.archiver.Archive(r.Context(), id, input.ArchivedBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"archive": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetArchive обрабатывает GET /archives/{tournamentID}
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.archiver.GetArchive(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListArchives обрабатывает GET /archives
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	entries, err := h.archiver.ListArchives(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"archives": entries, "total": len(entries)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteArchive обрабатывает DELETE /archives/{tournamentID}
func (h *ArchiveHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	warnings, err := h.archiver.DeleteArchive(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": true, "warnings": warnings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReconcileDeletion обрабатывает DELETE /tournaments/{tournamentID}
//
// 200 — каскад завершён (возможно, с предупреждениями); 500 с отчётом в
// теле — терминальный отказ: основная строка осталась, зависимые данные
// частично удалены.
func (h *ArchiveHandler) ReconcileDeletion(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reconciler.ReconcileDeletion(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDeletionFailed) && report != nil {
			if writeErr := writeJSON(w, http.StatusInternalServerError, jsonResponse{"report": report}, nil); writeErr != nil {
				serverErrorResponse(w, r, writeErr)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
