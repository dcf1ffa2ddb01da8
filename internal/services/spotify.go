// Spotify API implementation of the now-playing query
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyCurrentlyPlaying is the body of GET /me/player/currently-playing.
type SpotifyCurrentlyPlaying struct {
	Timestamp            int64         `json:"timestamp"`
	ProgressMS           *int          `json:"progress_ms"`
	IsPlaying            bool          `json:"is_playing"`
	CurrentlyPlayingType string        `json:"currently_playing_type"`
	Item                 *SpotifyTrack `json:"item"`
}

// AlbumArtURL prefers the medium (second) image and falls back to the first.
func (a SpotifyAlbum) AlbumArtURL() string {
	switch {
	case len(a.Images) > 1:
		return a.Images[1].URL
	case len(a.Images) == 1:
		return a.Images[0].URL
	default:
		return ""
	}
}

// Snapshot validates the response and converts it into a [models.Snapshot] stamped with fetchedAt.
func (cp *SpotifyCurrentlyPlaying) Snapshot(fetchedAt time.Time) (*models.Snapshot, error) {
	if cp.Item == nil {
		if cp.CurrentlyPlayingType == "ad" || cp.CurrentlyPlayingType == "unknown" {
			return nil, fmt.Errorf("%w: %s", shared.ErrNothingPlaying, cp.CurrentlyPlayingType)
		}
		return nil, fmt.Errorf("%w: missing item", shared.ErrMalformedResponse)
	}
	if cp.ProgressMS == nil {
		return nil, fmt.Errorf("%w: missing progress_ms", shared.ErrMalformedResponse)
	}
	if cp.Item.DurationMS <= 0 {
		return nil, fmt.Errorf("%w: invalid item.duration_ms %d", shared.ErrMalformedResponse, cp.Item.DurationMS)
	}

	artists := make([]string, 0, len(cp.Item.Artists))
	for _, a := range cp.Item.Artists {
		artists = append(artists, a.Name)
	}

	return &models.Snapshot{
		IsPlaying:   cp.IsPlaying,
		TrackID:     cp.Item.ID,
		TrackName:   cp.Item.Name,
		Artists:     artists,
		AlbumArtURL: cp.Item.Album.AlbumArtURL(),
		ProgressMS:  *cp.ProgressMS,
		DurationMS:  cp.Item.DurationMS,
		FetchedAt:   fetchedAt,
	}, nil
}

// SpotifyClientOpts contains optional dependencies for [NewSpotifyClient].
type SpotifyClientOpts struct {
	HTTPClient *http.Client     // Defaults to a client with a 5s timeout
	BaseURL    string           // Defaults to the Spotify Web API
	Now        func() time.Time // Stamps FetchedAt; defaults to time.Now
}

// SpotifyClient queries the player endpoint.
type SpotifyClient struct {
	auth       Authorizer
	source     shared.ConfigSource
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewSpotifyClient creates a SpotifyClient. The market is read from source on every request.
func NewSpotifyClient(auth Authorizer, source shared.ConfigSource, opts SpotifyClientOpts) *SpotifyClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SpotifyClient{
		auth:       auth,
		source:     source,
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		now:        opts.Now,
	}
}

// CurrentlyPlaying fetches the current playback state. The caller is expected to have called Authorize.
func (c *SpotifyClient) CurrentlyPlaying(ctx context.Context) (*models.Snapshot, error) {
	header := c.auth.AuthorizationHeader()
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("%w: no valid access token", shared.ErrNotAuthenticated)
	}

	query := url.Values{"market": {c.source.GetOption(shared.OptMarket, "ES")}}
	endpoint := c.baseURL + "/me/player/currently-playing?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrPlaybackQuery, shared.WrapTimeout(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, shared.ErrNothingPlaying
	case resp.StatusCode == http.StatusUnauthorized:
		c.auth.Invalidate()
		return nil, fmt.Errorf("%w: status %d", shared.ErrPlaybackQuery, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrPlaybackQuery, resp.StatusCode)
	}

	var body SpotifyCurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if wrapped := shared.WrapTimeout(err); errors.Is(wrapped, shared.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w", shared.ErrPlaybackQuery, wrapped)
		}
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrMalformedResponse, err)
	}

	return body.Snapshot(c.now())
}
