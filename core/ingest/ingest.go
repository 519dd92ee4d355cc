// Package ingest implements the upload pipeline: blob writes for the audio
// and cover parts followed by the catalog insert, in strict order with
// explicit short-circuiting.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"MwFM/logger"
	"MwFM/model"
	"MwFM/repository"
	"MwFM/storage"
)

// ErrNoAudioFile reports an upload without the required audio part.
var ErrNoAudioFile = errors.New("missing audio file")

// FilePart is one file of a multipart upload.
type FilePart struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// TrackMeta enumerates every recognized metadata field of an upload. Fields
// arrive as free text and are stored as-is; only the numeric and boolean
// fields are parsed at the HTTP boundary.
type TrackMeta struct {
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	Language    string
	Country     string
	Genre       string
	Explicit    bool
	BPM         int
	TopMonday   bool
	UploadedBy  *int64
}

// Service runs ingestions against a blob store and the track catalog.
type Service struct {
	blobs  storage.BlobStore
	tracks repository.TrackRepository
}

// NewService creates an ingestion service.
func NewService(blobs storage.BlobStore, tracks repository.TrackRepository) *Service {
	return &Service{blobs: blobs, tracks: tracks}
}

// Ingest accepts one required audio part and one optional cover part plus
// metadata, stores the blobs, and inserts the track row. The sequence is
// audio write, cover write, metadata insert; a failure at any stage stops the
// pipeline and removes blobs already written (best effort).
func (s *Service) Ingest(ctx context.Context, meta TrackMeta, audio, cover *FilePart) (*model.Track, error) {
	if audio == nil {
		return nil, ErrNoAudioFile
	}

	audioRef, err := s.blobs.Put(ctx, storage.KindAudio, audio.Name, audio.Reader, audio.Size, audio.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store audio blob: %w", err)
	}
	written := []storage.AssetRef{audioRef}

	var coverRef storage.AssetRef
	if cover != nil {
		coverRef, err = s.blobs.Put(ctx, storage.KindCover, cover.Name, cover.Reader, cover.Size, cover.ContentType)
		if err != nil {
			s.discard(ctx, written)
			return nil, fmt.Errorf("failed to store cover blob: %w", err)
		}
		written = append(written, coverRef)
	}

	track := &model.Track{
		UserID:      meta.UploadedBy,
		Title:       meta.Title,
		Artist:      meta.Artist,
		Album:       meta.Album,
		ReleaseDate: meta.ReleaseDate,
		Language:    meta.Language,
		Country:     meta.Country,
		Genre:       meta.Genre,
		Explicit:    meta.Explicit,
		BPM:         meta.BPM,
		TopMonday:   meta.TopMonday,
		AudioPath:   audioRef.ServePath(),
	}
	if !coverRef.IsZero() {
		track.CoverPath = coverRef.ServePath()
	}

	id, err := s.tracks.CreateTrack(ctx, track)
	if err != nil {
		s.discard(ctx, written)
		return nil, fmt.Errorf("failed to create track record: %w", err)
	}
	track.ID = id

	logger.Info("Track ingested",
		logger.Int64("trackId", id),
		logger.String("title", track.Title),
		logger.String("audio", audioRef.Key),
		logger.Bool("hasCover", !coverRef.IsZero()),
	)
	return track, nil
}

// discard removes blobs written by a failed ingestion so they don't linger as
// orphans. A failed delete only gets logged; the caller still sees the
// original error.
func (s *Service) discard(ctx context.Context, refs []storage.AssetRef) {
	for _, ref := range refs {
		if err := s.blobs.Remove(ctx, ref); err != nil {
			logger.Warn("Failed to clean up orphaned blob",
				logger.String("object", ref.ObjectPath()),
				logger.ErrorField(err),
			)
		}
	}
}
