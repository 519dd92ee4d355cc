package charts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultCover = "/static/covers/default.png"

func newTestClient(upstream *httptest.Server) *Client {
	return NewClient(upstream.URL, 2*time.Second, testDefaultCover)
}

func TestTopSongsNormalizesEntries(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/0/tracks", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"title":"Song A","artist":{"name":"Ann"},"album":{"cover_medium":"http://img/a.jpg"}},
			{"artist":{},"album":{}}
		]}`))
	}))
	defer upstream.Close()

	entries, err := newTestClient(upstream).TopSongs(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Song A", entries[0].Title)
	assert.Equal(t, "Ann", entries[0].Artist)
	assert.Equal(t, "http://img/a.jpg", entries[0].Cover)

	// Missing fields fall back rather than erroring.
	assert.Equal(t, "Unknown", entries[1].Title)
	assert.Equal(t, "Unknown", entries[1].Artist)
	assert.Equal(t, testDefaultCover, entries[1].Cover)
}

func TestTopAlbumsCoverField(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/0/albums", r.URL.Path)
		w.Write([]byte(`{"data":[{"title":"Album A","artist":{"name":"Bob"},"cover_medium":"http://img/al.jpg"}]}`))
	}))
	defer upstream.Close()

	entries, err := newTestClient(upstream).TopAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "http://img/al.jpg", entries[0].Cover)
}

func TestTopRegionSearchesRegionName(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "malawi", r.URL.Query().Get("q"))
		w.Write([]byte(`{"data":[{"title":"Local Hit","artist":{"name":"Wati"},"album":{"cover_medium":"http://img/l.jpg"}}]}`))
	}))
	defer upstream.Close()

	entries, err := newTestClient(upstream).TopRegion(context.Background(), "malawi")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Local Hit", entries[0].Title)
}

func TestMalformedPayloadYieldsEmptyChart(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	}))
	defer upstream.Close()

	entries, err := newTestClient(upstream).TopSongs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestUpstreamErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	_, err := newTestClient(upstream).TopSongs(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	_, err := newTestClient(upstream).TopSongs(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}
