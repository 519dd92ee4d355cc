package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MwFM/config"
	"MwFM/core/catalog"
	"MwFM/core/charts"
	"MwFM/core/ingest"
	"MwFM/db"
	"MwFM/logger"
	"MwFM/model"
	"MwFM/repository"
	"MwFM/storage"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

// Start wires the stores and services together and runs the HTTP server
// until SIGINT/SIGTERM.
func Start(cfg *config.Config) {
	sqlDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer sqlDB.Close()

	gormDB, err := db.ConnectGorm(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}

	// Users first: the tracks table declares a foreign key on users(id).
	if err := db.AutoMigrateModels(gormDB, &model.User{}); err != nil {
		logger.Fatal("Failed to migrate user model", logger.ErrorField(err))
	}
	if err := db.InitSchema(sqlDB); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob store", logger.ErrorField(err))
	}

	var rdb *redis.Client
	rdb, err = db.ConnectRedis(cfg)
	if err != nil {
		// The leaderboard mirror is best effort; run without it.
		logger.Warn("Redis unavailable, play leaderboard disabled", logger.ErrorField(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	trackRepo := repository.NewMySQLTrackRepository(sqlDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	ingestSvc := ingest.NewService(blobs, trackRepo)
	catalogSvc := catalog.NewService(trackRepo, userRepo, cfg.DefaultCoverPath)
	chartClient := charts.NewClient(cfg.ChartAPIURL, cfg.ChartTimeout, cfg.DefaultCoverPath)

	apiHandler := NewAPIHandler(ingestSvc, catalogSvc, chartClient, trackRepo, userRepo, blobs, rdb, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("port", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// NewRouter builds the mux router for the given handler set.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogMiddleware)

	// Upload & catalog
	router.HandleFunc("/api/upload", h.UploadTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{trackId}/play", h.PlayTrackHandler).Methods(http.MethodPost)

	// Aggregated views
	router.HandleFunc("/api/artists", h.GetArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/user-portfolio/{userId}", h.UserPortfolioHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/top-monday", h.TopMondayHandler).Methods(http.MethodGet)

	// External chart proxies
	router.HandleFunc("/api/top-songs", h.TopSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/top-albums", h.TopAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/top-malawi", h.TopRegionHandler).Methods(http.MethodGet)

	// Glue
	router.HandleFunc("/api/users", h.CreateUserHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)

	// Stored assets
	router.PathPrefix("/static/").HandlerFunc(h.StaticHandler).Methods(http.MethodGet)

	return router
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.BlobBackend == "minio" {
		return storage.NewMinioStore(cfg)
	}
	return storage.NewFSStore(cfg.UploadDir)
}
