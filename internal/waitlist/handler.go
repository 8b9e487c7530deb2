package waitlist

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler serves admin reads of the waitlist.
type Handler struct {
	lister Lister
	logger *logging.Logger
}

// NewHandler creates a new waitlist admin handler
func NewHandler(lister Lister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{lister: lister, logger: logger}
}

// ListResponse is the response for listing waitlist entries
type ListResponse struct {
	Entries []*intake.Record `json:"entries"`
	Count   int              `json:"count"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// List handles GET /admin/waitlist requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: defaultListLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = min(limit, maxListLimit)
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	entries, err := h.lister.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list waitlist", "error", err)
		http.Error(w, "failed to list waitlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListResponse{
		Entries: entries,
		Count:   len(entries),
		Offset:  filter.Offset,
		Limit:   filter.Limit,
	})
}
