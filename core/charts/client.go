// Package charts fetches third-party chart feeds and normalizes their
// entries into the catalog's track-summary shape. The adapter keeps no state:
// no cache, no retries, every call re-fetches.
package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"MwFM/model"

	"github.com/tidwall/gjson"
)

// ErrFetchFailed reports that an upstream feed could not be fetched or read.
// The failure is scoped to one chart kind; other kinds are unaffected.
var ErrFetchFailed = errors.New("chart fetch failed")

// Client is the external chart feed client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	defaultCover string
}

// NewClient creates a feed client with a bounded request timeout so a slow
// upstream cannot stall chart requests indefinitely.
func NewClient(baseURL string, timeout time.Duration, defaultCover string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		defaultCover: defaultCover,
	}
}

// TopSongs fetches the global top-tracks chart.
func (c *Client) TopSongs(ctx context.Context) ([]model.ChartEntry, error) {
	return c.fetch(ctx, "/chart/0/tracks", c.trackEntry)
}

// TopAlbums fetches the global top-albums chart.
func (c *Client) TopAlbums(ctx context.Context) ([]model.ChartEntry, error) {
	return c.fetch(ctx, "/chart/0/albums", c.albumEntry)
}

// TopRegion fetches top tracks for a named region. The upstream feed has no
// regional editorial charts, so this runs a track search on the region name.
func (c *Client) TopRegion(ctx context.Context, region string) ([]model.ChartEntry, error) {
	return c.fetch(ctx, "/search?q="+url.QueryEscape(region), c.trackEntry)
}

func (c *Client) fetch(ctx context.Context, path string, entry func(gjson.Result) model.ChartEntry) ([]model.ChartEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	// A malformed or empty payload yields an empty chart, not an error,
	// matching the per-entry fallback policy.
	entries := make([]model.ChartEntry, 0)
	gjson.ParseBytes(body).Get("data").ForEach(func(_, item gjson.Result) bool {
		entries = append(entries, entry(item))
		return true
	})
	return entries, nil
}

func (c *Client) trackEntry(item gjson.Result) model.ChartEntry {
	return model.ChartEntry{
		Title:  stringOr(item.Get("title"), "Unknown"),
		Artist: stringOr(item.Get("artist.name"), "Unknown"),
		Cover:  stringOr(item.Get("album.cover_medium"), c.defaultCover),
	}
}

func (c *Client) albumEntry(item gjson.Result) model.ChartEntry {
	return model.ChartEntry{
		Title:  stringOr(item.Get("title"), "Unknown"),
		Artist: stringOr(item.Get("artist.name"), "Unknown"),
		Cover:  stringOr(item.Get("cover_medium"), c.defaultCover),
	}
}

func stringOr(r gjson.Result, fallback string) string {
	if s := r.String(); s != "" {
		return s
	}
	return fallback
}
