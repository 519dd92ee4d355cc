package server

import (
	"context"
	"net/http"

	"MwFM/logger"
	"MwFM/model"
)

// Chart proxy endpoints. Each kind fails independently: an upstream error on
// one never affects the others.

// TopSongsHandler proxies the global top-tracks feed.
func (h *APIHandler) TopSongsHandler(w http.ResponseWriter, r *http.Request) {
	h.serveChart(w, r, "top-songs", func(ctx context.Context) ([]model.ChartEntry, error) {
		return h.charts.TopSongs(ctx)
	})
}

// TopAlbumsHandler proxies the global top-albums feed.
func (h *APIHandler) TopAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	h.serveChart(w, r, "top-albums", func(ctx context.Context) ([]model.ChartEntry, error) {
		return h.charts.TopAlbums(ctx)
	})
}

// TopRegionHandler proxies the regional top-tracks feed.
func (h *APIHandler) TopRegionHandler(w http.ResponseWriter, r *http.Request) {
	h.serveChart(w, r, "top-region", func(ctx context.Context) ([]model.ChartEntry, error) {
		return h.charts.TopRegion(ctx, h.cfg.ChartRegion)
	})
}

func (h *APIHandler) serveChart(w http.ResponseWriter, r *http.Request, kind string, fetch func(context.Context) ([]model.ChartEntry, error)) {
	entries, err := fetch(r.Context())
	if err != nil {
		logger.Error("Chart fetch failed", logger.String("chart", kind), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Chart fetch failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
