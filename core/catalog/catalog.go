// Package catalog implements the read-side aggregation views over the track
// catalog: full listing, artist roster, user portfolios, and the local
// spotlight chart.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"MwFM/model"
	"MwFM/repository"
)

// SpotlightLimit caps the weekly spotlight chart.
const SpotlightLimit = 20

// Service answers aggregation queries. Every operation is pure given the
// current store state.
type Service struct {
	tracks       repository.TrackRepository
	users        repository.UserRepository
	defaultCover string
}

// NewService creates an aggregation service. defaultCover is substituted for
// roster groups that have no cover at all.
func NewService(tracks repository.TrackRepository, users repository.UserRepository, defaultCover string) *Service {
	return &Service{tracks: tracks, users: users, defaultCover: defaultCover}
}

// ListTracks returns every track, most recently created first.
func (s *Service) ListTracks(ctx context.Context) ([]*model.Track, error) {
	return s.tracks.GetAllTracks(ctx)
}

// ArtistRoster groups all tracks by exact artist name. Each group carries its
// track count and a representative cover: the maximum cover path within the
// group, an arbitrary-but-deterministic pick since no recency or relevance
// weighting is applied. Groups come back sorted by descending track count;
// ties keep the store's natural order.
func (s *Service) ArtistRoster(ctx context.Context) ([]model.ArtistSummary, error) {
	tracks, err := s.tracks.GetAllTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks for artist roster: %w", err)
	}

	index := make(map[string]int)
	roster := make([]model.ArtistSummary, 0)
	for _, track := range tracks {
		i, ok := index[track.Artist]
		if !ok {
			i = len(roster)
			index[track.Artist] = i
			roster = append(roster, model.ArtistSummary{Name: track.Artist})
		}
		roster[i].TrackCount++
		if track.CoverPath > roster[i].Cover {
			roster[i].Cover = track.CoverPath
		}
	}

	for i := range roster {
		if roster[i].Cover == "" {
			roster[i].Cover = s.defaultCover
		}
	}

	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].TrackCount > roster[j].TrackCount
	})
	return roster, nil
}

// Portfolio pairs a user's profile summary with their tracks. A nil User
// means the user does not exist; a present User with an empty track list
// means they simply have no uploads.
type Portfolio struct {
	User      *model.User    `json:"user"`
	Portfolio []*model.Track `json:"portfolio"`
}

// UserPortfolio returns the given user's profile and tracks, newest first.
// An unknown user is a successful empty result, not an error.
func (s *Service) UserPortfolio(ctx context.Context, userID int64) (*Portfolio, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user == nil {
		return &Portfolio{User: nil, Portfolio: []*model.Track{}}, nil
	}

	tracks, err := s.tracks.GetTracksByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks for user %d: %w", userID, err)
	}
	return &Portfolio{User: user, Portfolio: tracks}, nil
}

// SpotlightChart returns the flagged tracks ordered by descending play count,
// at most SpotlightLimit of them. Local data only; no external feed involved.
func (s *Service) SpotlightChart(ctx context.Context) ([]*model.Track, error) {
	tracks, err := s.tracks.GetSpotlightTracks(ctx, SpotlightLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load spotlight tracks: %w", err)
	}
	if len(tracks) > SpotlightLimit {
		tracks = tracks[:SpotlightLimit]
	}
	return tracks, nil
}
