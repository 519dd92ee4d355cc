package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"MwFM/logger"
	"MwFM/model"

	"gorm.io/gorm"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

// CreateUserHandler provisions a catalog-side user profile. Credentials and
// sessions are handled elsewhere; this only creates the row tracks can
// reference as owner.
func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
	}
	if err := h.userRepo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(w, http.StatusConflict, "Username or email already taken")
			return
		}
		logger.Error("Failed to create user", logger.String("username", req.Username), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
