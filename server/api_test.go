package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"MwFM/config"
	"MwFM/core/catalog"
	"MwFM/core/charts"
	"MwFM/core/ingest"
	"MwFM/model"
	"MwFM/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memTrackRepo is an in-memory TrackRepository for handler tests.
type memTrackRepo struct {
	mu     sync.Mutex
	tracks []*model.Track
}

func (r *memTrackRepo) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	out := append([]*model.Track(nil), r.tracks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memTrackRepo) GetTracksByUserID(ctx context.Context, userID int64) ([]*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Track, 0)
	for i := len(r.tracks) - 1; i >= 0; i-- {
		t := r.tracks[i]
		if t.UserID != nil && *t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTrackRepo) GetSpotlightTracks(ctx context.Context, limit int) ([]*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Track, 0)
	for _, t := range r.tracks {
		if t.TopMonday {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Plays > out[j].Plays })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTrackRepo) IncrementPlayCount(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tracks {
		if t.ID == id {
			t.Plays++
			return true, nil
		}
	}
	return false, nil
}

type memUserRepo struct {
	users map[int64]*model.User
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if r.users == nil {
		r.users = make(map[int64]*model.User)
	}
	// Mirror the unique indexes on username and email, surfaced the way the
	// translated gorm driver reports them.
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

type testEnv struct {
	router    http.Handler
	trackRepo *memTrackRepo
	userRepo  *memUserRepo
}

func newTestEnv(t *testing.T, chartUpstream string) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DefaultCoverPath: "/static/covers/default.png",
		ChartAPIURL:      chartUpstream,
		ChartTimeout:     2 * time.Second,
		ChartRegion:      "malawi",
	}

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	trackRepo := &memTrackRepo{}
	userRepo := &memUserRepo{}

	h := NewAPIHandler(
		ingest.NewService(blobs, trackRepo),
		catalog.NewService(trackRepo, userRepo, cfg.DefaultCoverPath),
		charts.NewClient(cfg.ChartAPIURL, cfg.ChartTimeout, cfg.DefaultCoverPath),
		trackRepo,
		userRepo,
		blobs,
		nil, // no redis in tests; the mirror is best effort
		cfg,
	)

	return &testEnv{router: NewRouter(h), trackRepo: trackRepo, userRepo: userRepo}
}

type uploadForm struct {
	fields map[string]string
	files  map[string]string // form field name -> file name
}

func multipartRequest(t *testing.T, form uploadForm) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, value := range form.fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for field, filename := range form.files {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + filename))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doJSON(t *testing.T, router http.Handler, req *http.Request, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestUploadThenListTracks(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	req := multipartRequest(t, uploadForm{
		fields: map[string]string{"title": "Test", "artist": "Ann", "bpm": "120"},
		files:  map[string]string{"audio": "song.mp3", "cover": "art.png"},
	})
	rec := doJSON(t, env.router, req, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tracks []model.Track
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/tracks", nil), &tracks)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Test", tracks[0].Title)
	assert.Equal(t, "Ann", tracks[0].Artist)
	assert.Equal(t, 120, tracks[0].BPM)
	assert.Equal(t, int64(0), tracks[0].Plays)
}

func TestUploadWithoutAudioIsRejected(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	req := multipartRequest(t, uploadForm{
		fields: map[string]string{"title": "Test"},
		files:  map[string]string{"cover": "art.png"},
	})
	rec := doJSON(t, env.router, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.trackRepo.tracks)
}

func TestUploadRejectsBadBPM(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	req := multipartRequest(t, uploadForm{
		fields: map[string]string{"title": "Test", "bpm": "fast"},
		files:  map[string]string{"audio": "song.mp3"},
	})
	rec := doJSON(t, env.router, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.trackRepo.tracks)
}

func TestArtistRosterOrdering(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	for _, artist := range []string{"Ann", "Ann", "Bob"} {
		req := multipartRequest(t, uploadForm{
			fields: map[string]string{"title": "t", "artist": artist},
			files:  map[string]string{"audio": "song.mp3"},
		})
		rec := doJSON(t, env.router, req, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var roster []model.ArtistSummary
	rec := doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/artists", nil), &roster)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, roster, 2)
	assert.Equal(t, "Ann", roster[0].Name)
	assert.Equal(t, 2, roster[0].TrackCount)
	assert.Equal(t, "Bob", roster[1].Name)
	assert.Equal(t, 1, roster[1].TrackCount)
}

func TestUserPortfolioNullVersusEmpty(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")
	require.NoError(t, env.userRepo.CreateUser(context.Background(),
		&model.User{Username: "ann", Email: "ann@example.com"}))

	var resp struct {
		User      *model.User   `json:"user"`
		Portfolio []model.Track `json:"portfolio"`
	}

	// Existing user with zero tracks: non-null user, empty array.
	rec := doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/user-portfolio/1", nil), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ann", resp.User.Username)
	require.NotNil(t, resp.Portfolio)
	assert.Empty(t, resp.Portfolio)

	// Nonexistent user: null user, empty array, still a 200.
	resp.User = nil
	resp.Portfolio = nil
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/user-portfolio/99", nil), &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp.User)
	require.NotNil(t, resp.Portfolio)
	assert.Empty(t, resp.Portfolio)
}

func TestPlayRecordingAndSpotlight(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	req := multipartRequest(t, uploadForm{
		fields: map[string]string{"title": "Hit", "artist": "Ann", "top_monday": "true"},
		files:  map[string]string{"audio": "hit.mp3"},
	})
	rec := doJSON(t, env.router, req, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var played struct {
		Track model.Track `json:"track"`
	}
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodPost, "/api/tracks/1/play", nil), &played)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), played.Track.Plays, "play response carries the updated track")

	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodPost, "/api/tracks/99/play", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var chart []model.Track
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/top-monday", nil), &chart)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, chart, 1)
	assert.True(t, chart[0].TopMonday)
	assert.Equal(t, int64(1), chart[0].Plays)
}

func TestChartProxyEndpoints(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chart/0/tracks":
			w.Write([]byte(`{"data":[{"title":"Global Hit","artist":{"name":"Star"},"album":{"cover_medium":"http://img/g.jpg"}}]}`))
		case "/search":
			assert.Equal(t, "malawi", r.URL.Query().Get("q"))
			w.Write([]byte(`{"data":[{"title":"Local Hit","artist":{"name":"Wati"}}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer upstream.Close()

	env := newTestEnv(t, upstream.URL)

	var entries []model.ChartEntry
	rec := doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/top-songs", nil), &entries)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, entries, 1)
	assert.Equal(t, "Global Hit", entries[0].Title)

	entries = nil
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/top-malawi", nil), &entries)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, entries, 1)
	assert.Equal(t, "Local Hit", entries[0].Title)
	assert.Equal(t, "/static/covers/default.png", entries[0].Cover)

	// top-albums hits the 500 branch upstream; the failure stays isolated to
	// that chart kind.
	rec = doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/top-albums", nil), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStaticServesUploadedCover(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	req := multipartRequest(t, uploadForm{
		fields: map[string]string{"title": "Test"},
		files:  map[string]string{"audio": "song.mp3", "cover": "art.png"},
	})
	rec := doJSON(t, env.router, req, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []model.Track
	doJSON(t, env.router, httptest.NewRequest(http.MethodGet, "/api/tracks", nil), &tracks)
	require.Len(t, tracks, 1)
	require.NotEmpty(t, tracks[0].CoverPath)

	coverURL, err := url.Parse(tracks[0].CoverPath)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, coverURL.Path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "content of art.png", rec.Body.String())
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	body := bytes.NewBufferString(`{"username":"","email":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users", body)
	rec := doJSON(t, env.router, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = bytes.NewBufferString(`{"username":"ann","email":"ann@example.com","bio":"singer"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/users", body)
	var user model.User
	rec = doJSON(t, env.router, req, &user)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ann", user.Username)

	// A second user colliding on the unique indexes is a conflict.
	body = bytes.NewBufferString(`{"username":"ann","email":"other@example.com"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/users", body)
	rec = doJSON(t, env.router, req, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
