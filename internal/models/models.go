package models

import (
	"strings"
	"time"
)

// Snapshot is the remote playback state at FetchedAt.
//
// A published Snapshot is never mutated; consumers may hold the pointer across frames.
type Snapshot struct {
	IsPlaying   bool
	TrackID     string
	TrackName   string
	Artists     []string
	AlbumArtURL string
	ProgressMS  int
	DurationMS  int
	FetchedAt   time.Time
}

// ArtistLine joins the artist names for display.
func (s *Snapshot) ArtistLine() string {
	return strings.Join(s.Artists, ", ")
}

// Fraction returns ProgressMS/DurationMS clamped to [0, 1].
func (s *Snapshot) Fraction() float64 {
	if s.DurationMS <= 0 {
		return 0
	}
	f := float64(s.ProgressMS) / float64(s.DurationMS)
	return max(0, min(1, f))
}

func (s *Snapshot) Progress() time.Duration {
	return time.Duration(s.ProgressMS) * time.Millisecond
}

func (s *Snapshot) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// AccessToken is a short-lived credential plus the refresh token used to mint it.
type AccessToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// HasExpired reports whether the token is unusable at now. A token without an access token or expiry has expired.
func (t AccessToken) HasExpired(now time.Time) bool {
	if t.AccessToken == "" || t.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(t.ExpiresAt)
}
