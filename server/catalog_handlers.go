package server

import (
	"net/http"
	"strconv"

	"MwFM/logger"

	"github.com/gorilla/mux"
)

// GetArtistsHandler returns the artist roster: per-artist track counts with a
// representative cover, largest groups first.
func (h *APIHandler) GetArtistsHandler(w http.ResponseWriter, r *http.Request) {
	roster, err := h.catalog.ArtistRoster(r.Context())
	if err != nil {
		logger.Error("Failed to build artist roster", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve artists")
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// UserPortfolioHandler returns {user, portfolio} for one user. An unknown
// user yields a null user and an empty portfolio, not an error.
func (h *APIHandler) UserPortfolioHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	portfolio, err := h.catalog.UserPortfolio(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to build user portfolio", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve portfolio")
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// TopMondayHandler returns the local weekly spotlight chart.
func (h *APIHandler) TopMondayHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.SpotlightChart(r.Context())
	if err != nil {
		logger.Error("Failed to build spotlight chart", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve spotlight chart")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}
