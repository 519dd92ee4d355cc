package server

import (
	"io"
	"net/http"
	"strings"

	"MwFM/logger"
)

// StaticHandler serves stored assets (cover art, audio) straight from the
// blob store under /static/.
func (h *APIHandler) StaticHandler(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/static/")
	if objectPath == "" || strings.Contains(objectPath, "..") {
		writeError(w, http.StatusBadRequest, "Invalid object path")
		return
	}

	object, err := h.blobs.Open(r.Context(), objectPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer object.Close()

	var contentType string
	switch {
	case strings.HasPrefix(objectPath, "covers/"):
		contentType = "image/jpeg"
	case strings.HasPrefix(objectPath, "audio/"):
		contentType = "audio/mpeg"
	default:
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000") // assets are immutable
	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("Error serving blob", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
