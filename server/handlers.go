package server

import (
	"encoding/json"
	"net/http"

	"MwFM/config"
	"MwFM/core/catalog"
	"MwFM/core/charts"
	"MwFM/core/ingest"
	"MwFM/repository"
	"MwFM/storage"

	"github.com/go-redis/redis/v8"
)

// APIHandler holds the services every endpoint needs. Constructed once at
// startup and handed to the router.
type APIHandler struct {
	ingest    *ingest.Service
	catalog   *catalog.Service
	charts    *charts.Client
	trackRepo repository.TrackRepository
	userRepo  repository.UserRepository
	blobs     storage.BlobStore
	rdb       *redis.Client // nil when redis is unavailable; the mirror is best effort
	cfg       *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	ingestSvc *ingest.Service,
	catalogSvc *catalog.Service,
	chartClient *charts.Client,
	trackRepo repository.TrackRepository,
	userRepo repository.UserRepository,
	blobs storage.BlobStore,
	rdb *redis.Client,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		ingest:    ingestSvc,
		catalog:   catalogSvc,
		charts:    chartClient,
		trackRepo: trackRepo,
		userRepo:  userRepo,
		blobs:     blobs,
		rdb:       rdb,
		cfg:       cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
