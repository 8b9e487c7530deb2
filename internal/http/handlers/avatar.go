package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/orbit-landing/internal/analytics"
	"github.com/wolfman30/orbit-landing/internal/blob"
	"github.com/wolfman30/orbit-landing/internal/observability/metrics"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// DefaultAvatarMaxBytes is 4.5 MiB.
const DefaultAvatarMaxBytes int64 = 4_718_592

// AvatarHandler stores profile images uploaded from the landing site.
type AvatarHandler struct {
	store    blob.Store
	maxBytes int64
	metrics  *metrics.UploadMetrics
	sink     analytics.Sink
	logger   *logging.Logger
}

// AvatarConfig wires an AvatarHandler. Metrics and Sink are optional.
type AvatarConfig struct {
	Store    blob.Store
	MaxBytes int64
	Metrics  *metrics.UploadMetrics
	Sink     analytics.Sink
	Logger   *logging.Logger
}

func NewAvatarHandler(cfg AvatarConfig) *AvatarHandler {
	if cfg.Store == nil {
		panic("handlers: avatar blob store required")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultAvatarMaxBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &AvatarHandler{
		store:    cfg.Store,
		maxBytes: cfg.MaxBytes,
		metrics:  cfg.Metrics,
		sink:     analytics.OrNop(cfg.Sink),
		logger:   cfg.Logger,
	}
}

// Upload handles POST /api/avatar/upload?filename=<name>.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		MethodNotAllowed(w, r)
		return
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		h.reject(w, "missing_filename", "The filename query parameter is required.")
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, http.MaxBytesReader(w, r.Body, h.maxBytes)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, "file_too_large", "The file exceeds the upload size limit.")
			return
		}
		h.reject(w, "invalid_body", "The request body could not be read.")
		return
	}
	if buf.Len() == 0 {
		h.reject(w, "missing_body", "The request body is empty.")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	size := int64(buf.Len())

	obj, err := h.store.Put(r.Context(), filename, &buf, size, contentType)
	if err != nil {
		if errors.Is(err, blob.ErrInvalidName) {
			h.reject(w, "invalid_filename", "The filename is not usable.")
			return
		}
		h.logger.Error("avatar upload failed", "error", err, "size", size)
		h.metrics.ObserveUpload("error", size)
		writeError(w, http.StatusInternalServerError, "upload_failed", "The file could not be stored. Please try again.")
		return
	}

	h.metrics.ObserveUpload("ok", size)
	h.sink.Record(r.Context(), "avatar_uploaded", analytics.Properties{
		"size":         size,
		"content_type": contentType,
	})
	writeJSON(w, http.StatusOK, obj)
}

func (h *AvatarHandler) reject(w http.ResponseWriter, code, message string) {
	h.metrics.ObserveUpload("rejected", 0)
	writeError(w, http.StatusBadRequest, code, message)
}
