package model

// ChartEntry is the normalized track summary shared by the local spotlight
// chart and the external feed adapters.
type ChartEntry struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover"`
}

// ArtistSummary is one group of the artist roster view.
type ArtistSummary struct {
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
	Cover      string `json:"cover"`
}
