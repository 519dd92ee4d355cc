package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"MwFM/core/ingest"
	"MwFM/db"
	"MwFM/logger"

	"github.com/gorilla/mux"
)

// maxUploadSize bounds one multipart upload request.
const maxUploadSize = 100 << 20 // 100MB

// UploadTrackHandler accepts a multipart upload: one required "audio" file,
// an optional "cover" file, and the metadata text fields.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request too large. Maximum size is %d MB", maxUploadSize>>20))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Error("Failed to parse upload form", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to parse upload form")
		return
	}

	audioFile, audioHeader, err := r.FormFile("audio")
	if err != nil {
		if err == http.ErrMissingFile {
			writeError(w, http.StatusBadRequest, "Missing audio file. Please select a file to upload.")
		} else {
			writeError(w, http.StatusBadRequest, "Failed to process uploaded audio file")
		}
		return
	}
	defer audioFile.Close()

	audio := &ingest.FilePart{
		Name:        audioHeader.Filename,
		Size:        audioHeader.Size,
		ContentType: audioHeader.Header.Get("Content-Type"),
		Reader:      audioFile,
	}

	var cover *ingest.FilePart
	coverFile, coverHeader, err := r.FormFile("cover")
	if err == nil {
		defer coverFile.Close()
		cover = &ingest.FilePart{
			Name:        coverHeader.Filename,
			Size:        coverHeader.Size,
			ContentType: coverHeader.Header.Get("Content-Type"),
			Reader:      coverFile,
		}
	} else if err != http.ErrMissingFile {
		writeError(w, http.StatusBadRequest, "Failed to process uploaded cover file")
		return
	}

	meta, err := trackMetaFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.ingest.Ingest(r.Context(), meta, audio, cover)
	if err != nil {
		if errors.Is(err, ingest.ErrNoAudioFile) {
			writeError(w, http.StatusBadRequest, "Missing audio file. Please select a file to upload.")
			return
		}
		logger.Error("Ingestion failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Track uploaded",
		"trackId": track.ID,
		"track":   track,
	})
}

// trackMetaFromForm reads the recognized metadata fields from a parsed
// multipart form. Text fields stay free-form; only numeric fields must parse.
func trackMetaFromForm(r *http.Request) (ingest.TrackMeta, error) {
	meta := ingest.TrackMeta{
		Title:       r.FormValue("title"),
		Artist:      r.FormValue("artist"),
		Album:       r.FormValue("album"),
		ReleaseDate: r.FormValue("release_date"),
		Language:    r.FormValue("language"),
		Country:     r.FormValue("country"),
		Genre:       r.FormValue("genre"),
		Explicit:    formBool(r.FormValue("explicit")),
		TopMonday:   formBool(r.FormValue("top_monday")),
	}

	if v := r.FormValue("bpm"); v != "" {
		bpm, err := strconv.Atoi(v)
		if err != nil {
			return meta, fmt.Errorf("invalid 'bpm' value %q", v)
		}
		meta.BPM = bpm
	}
	if v := r.FormValue("uploaded_by"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return meta, fmt.Errorf("invalid 'uploaded_by' value %q", v)
		}
		meta.UploadedBy = &userID
	}
	return meta, nil
}

func formBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// GetTracksHandler returns the full track list, newest first.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.ListTracks(r.Context())
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve tracks")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// PlayTrackHandler records one play of a track: the MySQL counter is
// authoritative, the redis leaderboard mirror is best effort.
func (h *APIHandler) PlayTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	found, err := h.trackRepo.IncrementPlayCount(r.Context(), trackID)
	if err != nil {
		logger.Error("Failed to record play", logger.Int64("trackId", trackID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "No such track")
		return
	}

	if h.rdb != nil {
		if err := db.RecordPlay(r.Context(), h.rdb, trackID); err != nil {
			logger.Warn("Play leaderboard update failed", logger.Int64("trackId", trackID), logger.ErrorField(err))
		}
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), trackID)
	if err != nil {
		logger.Error("Failed to reload track after play", logger.Int64("trackId", trackID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Play recorded",
		"track":   track,
	})
}
