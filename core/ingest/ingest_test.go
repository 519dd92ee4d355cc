package ingest

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"MwFM/model"
	"MwFM/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTrackRepo is an in-memory TrackRepository for pipeline tests.
type memTrackRepo struct {
	mu         sync.Mutex
	tracks     []*model.Track
	failCreate bool
}

func (r *memTrackRepo) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return 0, errors.New("insert failed")
	}
	id := int64(len(r.tracks) + 1)
	copied := *track
	copied.ID = id
	r.tracks = append(r.tracks, &copied)
	return id, nil
}

func (r *memTrackRepo) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTrackRepo) GetAllTracks(ctx context.Context) ([]*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Track, 0, len(r.tracks))
	for i := len(r.tracks) - 1; i >= 0; i-- {
		out = append(out, r.tracks[i])
	}
	return out, nil
}

func (r *memTrackRepo) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	return nil, nil
}

func (r *memTrackRepo) GetSpotlightTracks(ctx context.Context, limit int) ([]*model.Track, error) {
	return nil, nil
}

func (r *memTrackRepo) IncrementPlayCount(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func filePart(name, content string) *FilePart {
	return &FilePart{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "application/octet-stream",
		Reader:      bytes.NewReader([]byte(content)),
	}
}

func countStoredFiles(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestIngestStoresBlobsThenRow(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := storage.NewFSStore(root)
	require.NoError(t, err)
	repo := &memTrackRepo{}
	svc := NewService(store, repo)

	userID := int64(7)
	meta := TrackMeta{
		Title:      "Test",
		Artist:     "Ann",
		Album:      "First",
		Genre:      "afro-pop",
		BPM:        120,
		UploadedBy: &userID,
	}

	track, err := svc.Ingest(ctx, meta, filePart("song.mp3", "audio-bytes"), filePart("art.png", "cover-bytes"))
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, int64(1), track.ID)
	assert.Equal(t, "Test", track.Title)
	assert.Equal(t, 120, track.BPM)
	require.NotNil(t, track.UserID)
	assert.Equal(t, int64(7), *track.UserID)

	// The audio reference must resolve to a blob that exists.
	require.True(t, strings.HasPrefix(track.AudioPath, "/static/audio/"))
	audioRef := storage.AssetRef{Kind: storage.KindAudio, Key: strings.TrimPrefix(track.AudioPath, "/static/audio/")}
	exists, err := store.Exists(ctx, audioRef)
	require.NoError(t, err)
	assert.True(t, exists)

	require.True(t, strings.HasPrefix(track.CoverPath, "/static/covers/"))
	coverRef := storage.AssetRef{Kind: storage.KindCover, Key: strings.TrimPrefix(track.CoverPath, "/static/covers/")}
	exists, err = store.Exists(ctx, coverRef)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Len(t, repo.tracks, 1)
	assert.Equal(t, int64(0), repo.tracks[0].Plays)
}

func TestIngestMissingAudio(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewFSStore(root)
	require.NoError(t, err)
	repo := &memTrackRepo{}
	svc := NewService(store, repo)

	_, err = svc.Ingest(context.Background(), TrackMeta{Title: "Test"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoAudioFile)
	assert.Empty(t, repo.tracks, "a rejected upload must never write a catalog row")
	assert.Zero(t, countStoredFiles(t, root))
}

func TestIngestCoverIsOptional(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(store, &memTrackRepo{})

	track, err := svc.Ingest(context.Background(), TrackMeta{Title: "Solo"}, filePart("solo.mp3", "x"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, track.AudioPath)
	assert.Empty(t, track.CoverPath)
}

func TestIngestInsertFailureCleansUpBlobs(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewFSStore(root)
	require.NoError(t, err)
	repo := &memTrackRepo{failCreate: true}
	svc := NewService(store, repo)

	_, err = svc.Ingest(context.Background(), TrackMeta{Title: "Doomed"},
		filePart("song.mp3", "a"), filePart("art.png", "c"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoAudioFile)

	assert.Zero(t, countStoredFiles(t, root), "blobs written before a failed insert must be discarded")
}
