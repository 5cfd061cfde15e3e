package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stoicjournal/stoic/internal/ctxkeys"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/respond"
	"github.com/stoicjournal/stoic/internal/service"
	"github.com/stoicjournal/stoic/internal/validation"
)

const (
	msgInvalidInput = "Invalid input data"
	msgInvalidQuery = "Invalid query parameters"
	msgInvalidID    = "Invalid ID format"
	msgNotFound     = "Entry not found"
	msgDuplicate    = "An entry already exists for today"
	msgGeneration   = "AI generation failed. Please try again later."
	msgUnexpected   = "An unexpected error occurred. Please try again later."
	exportFilename  = "stoic-journal-export.json"
	exportMediaType = "application/json"
)

type EntryHandler struct {
	entryService  *service.EntryService
	exportService *service.ExportService
}

// NewEntryHandler wires the entry endpoints. exportService may be nil, in
// which case exports are streamed back as an attachment.
func NewEntryHandler(entryService *service.EntryService, exportService *service.ExportService) *EntryHandler {
	return &EntryHandler{
		entryService:  entryService,
		exportService: exportService,
	}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var input validation.CreateEntryInput
	err := decodeJSON(w, r, &input)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidInput)
		return
	}

	entry, err := h.entryService.Create(r.Context(), userID, input)
	if err != nil {
		var validationErr *validation.Error
		switch {
		case errors.As(err, &validationErr):
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, validationErr.Error())
		case errors.Is(err, repository.ErrDuplicateEntry):
			respond.Error(w, http.StatusConflict, respond.CodeDuplicateEntry, msgDuplicate)
		case errors.Is(err, service.ErrGenerationFailed):
			slog.Error("failed to generate reflection", "error", err, "user_id", userID)
			respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgGeneration)
		default:
			slog.Error("failed to create entry", "error", err, "user_id", userID)
			respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		}
		return
	}

	respond.JSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	query, err := validation.ParseListQuery(r.URL.Query())
	if err != nil {
		message := msgInvalidQuery
		var validationErr *validation.Error
		if errors.As(err, &validationErr) {
			message = validationErr.Error()
		}
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, message)
		return
	}

	list, err := h.entryService.Entries(r.Context(), userID, query)
	if err != nil {
		slog.Error("failed to list entries", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	respond.JSON(w, http.StatusOK, list)
}

func (h *EntryHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	entry, err := h.entryService.Today(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "No entry for today")
			return
		}
		slog.Error("failed to get today's entry", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	respond.JSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	entryID := r.PathValue("id")

	err := validation.ValidateID(entryID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidID)
		return
	}

	entry, err := h.entryService.Entry(r.Context(), userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, msgNotFound)
			return
		}
		slog.Error("failed to get entry", "error", err, "user_id", userID, "entry_id", entryID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	respond.JSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	entryID := r.PathValue("id")

	err := validation.ValidateID(entryID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidID)
		return
	}

	err = h.entryService.Delete(r.Context(), userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, msgNotFound)
			return
		}
		slog.Error("failed to delete entry", "error", err, "user_id", userID, "entry_id", entryID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export returns every entry of the user. With object storage configured the
// document is uploaded and a short-lived download link is returned instead.
func (h *EntryHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	export, err := h.entryService.Export(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list entries for export", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
		return
	}

	if h.exportService != nil {
		link, err := h.exportService.Upload(r.Context(), export)
		if err != nil {
			slog.Error("failed to upload export", "error", err, "user_id", userID)
			respond.Error(w, http.StatusInternalServerError, respond.CodeServerError, msgUnexpected)
			return
		}
		respond.JSON(w, http.StatusOK, link)
		return
	}

	w.Header().Set("Content-Type", exportMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename))

	err = json.NewEncoder(w).Encode(export)
	if err != nil {
		// Headers are already sent.
		slog.Error("failed to encode export", "error", err, "user_id", userID)
	}
}
