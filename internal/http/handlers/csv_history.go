package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// UploadHistoryEntry describes a past CSV import.
type UploadHistoryEntry struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
	RowCount   *int      `json:"rowCount,omitempty"`
}

// UploadHistorySource lists recent CSV imports, newest first.
type UploadHistorySource interface {
	Recent(ctx context.Context, limit int) ([]UploadHistoryEntry, error)
}

// CSVHistoryHandler serves GET /api/csv/upload-history. Without a source it
// always answers with an empty list.
type CSVHistoryHandler struct {
	source UploadHistorySource
	logger *logging.Logger
}

func NewCSVHistoryHandler(source UploadHistorySource, logger *logging.Logger) *CSVHistoryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CSVHistoryHandler{source: source, logger: logger}
}

// parseHistoryLimit clamps limit to [1,100]; missing or unparsable values use the default.
func parseHistoryLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultHistoryLimit
	}
	return max(1, min(n, maxHistoryLimit))
}

func (h *CSVHistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseHistoryLimit(r.URL.Query().Get("limit"))
	entries := []UploadHistoryEntry{}
	if h.source != nil {
		found, err := h.source.Recent(r.Context(), limit)
		if err != nil {
			h.logger.Error("failed to load upload history", "error", err)
			writeError(w, http.StatusInternalServerError, "history_unavailable", "Upload history is unavailable.")
			return
		}
		if len(found) > limit {
			found = found[:limit]
		}
		entries = append(entries, found...)
	}
	writeJSON(w, http.StatusOK, entries)
}
