package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MwFM/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetAllTracks(ctx context.Context) ([]*model.Track, error)
	GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error)
	GetSpotlightTracks(ctx context.Context, limit int) ([]*model.Track, error)
	IncrementPlayCount(ctx context.Context, id int64) (bool, error)
}

const trackColumns = `id, user_id, title, artist, album, release_date, language, country, genre,
	explicit, bpm, audio_path, cover_path, plays, top_monday, created_at, updated_at`

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (user_id, title, artist, album, release_date, language, country, genre,
		explicit, bpm, audio_path, cover_path, top_monday, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	var userID sql.NullInt64
	if track.UserID != nil {
		userID = sql.NullInt64{Int64: *track.UserID, Valid: true}
	}
	var coverPath sql.NullString
	if track.CoverPath != "" {
		coverPath = sql.NullString{String: track.CoverPath, Valid: true}
	}

	now := time.Now()
	res, err := stmt.ExecContext(ctx, userID, track.Title, track.Artist, track.Album, track.ReleaseDate,
		track.Language, track.Country, track.Genre, track.Explicit, track.BPM,
		track.AudioPath, coverPath, track.TopMonday, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetAllTracks retrieves every track, most recently created first. IDs are
// assigned monotonically, so descending ID order stands in for creation order.
func (r *mysqlTrackRepository) GetAllTracks(ctx context.Context) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all tracks: %w", err)
	}
	return collectTracks(rows)
}

// GetTracksByUserID retrieves all tracks owned by the given user, newest first.
func (r *mysqlTrackRepository) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE user_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for user ID %d: %w", userID, err)
	}
	return collectTracks(rows)
}

// GetSpotlightTracks retrieves flagged tracks ordered by descending play
// count, capped at limit.
func (r *mysqlTrackRepository) GetSpotlightTracks(ctx context.Context, limit int) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE top_monday = TRUE ORDER BY plays DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query spotlight tracks: %w", err)
	}
	return collectTracks(rows)
}

// IncrementPlayCount bumps the play counter for a track. Returns false when
// no such track exists.
func (r *mysqlTrackRepository) IncrementPlayCount(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE tracks SET plays = plays + 1, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to increment play count for track ID %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for track ID %d: %w", id, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(row rowScanner) (*model.Track, error) {
	track := &model.Track{}
	var userID sql.NullInt64
	var coverPath sql.NullString
	err := row.Scan(&track.ID, &userID, &track.Title, &track.Artist, &track.Album, &track.ReleaseDate,
		&track.Language, &track.Country, &track.Genre, &track.Explicit, &track.BPM,
		&track.AudioPath, &coverPath, &track.Plays, &track.TopMonday, &track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		track.UserID = &userID.Int64
	}
	track.CoverPath = coverPath.String
	return track, nil
}

func collectTracks(rows *sql.Rows) ([]*model.Track, error) {
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during track rows iteration: %w", err)
	}
	return tracks, nil
}
