package handlers

import (
	"net/http"
	"time"
)

// SystemStatus is the body of GET /api/orbit/system-status.
type SystemStatus struct {
	OK        bool              `json:"ok"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}

// SystemStatusHandler reports liveness and the running version.
type SystemStatusHandler struct {
	version string
	now     func() time.Time
}

func NewSystemStatusHandler(version string) *SystemStatusHandler {
	if version == "" {
		version = "1.0.0"
	}
	return &SystemStatusHandler{version: version, now: time.Now}
}

func (h *SystemStatusHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SystemStatus{
		OK:        true,
		Version:   h.version,
		Services:  map[string]string{},
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
