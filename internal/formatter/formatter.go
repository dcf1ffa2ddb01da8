// package formatter renders a playback snapshot as plain text, Markdown or JSON
package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// Fallback lines shown when nothing is playing.
const (
	NothingPlayingTitle    = "Nothing is playing"
	NothingPlayingSubtitle = "Kinda quiet :("
)

// NowPlaying is the JSON shape of a snapshot.
type NowPlaying struct {
	Playing     bool      `json:"is_playing"`
	TrackID     string    `json:"track_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Artists     []string  `json:"artists,omitempty"`
	AlbumArtURL string    `json:"album_art_url,omitempty"`
	ProgressMS  int       `json:"progress_ms"`
	DurationMS  int       `json:"duration_ms"`
	FetchedAt   time.Time `json:"fetched_at,omitzero"`
}

// FromSnapshot converts snap, which may be nil, to its JSON shape.
func FromSnapshot(snap *models.Snapshot) NowPlaying {
	if snap == nil {
		return NowPlaying{}
	}
	return NowPlaying{
		Playing:     snap.IsPlaying,
		TrackID:     snap.TrackID,
		Title:       snap.TrackName,
		Artists:     snap.Artists,
		AlbumArtURL: snap.AlbumArtURL,
		ProgressMS:  snap.ProgressMS,
		DurationMS:  snap.DurationMS,
		FetchedAt:   snap.FetchedAt,
	}
}

// ToJSON renders snap as indented JSON. A nil snapshot renders as `{"is_playing": false, ...}`.
func ToJSON(snap *models.Snapshot) ([]byte, error) {
	data, err := shared.MarshalJSON(FromSnapshot(snap), true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// ToText renders snap as two or three lines: title, artists and, when a track is present, the position.
func ToText(snap *models.Snapshot) []byte {
	var buf bytes.Buffer

	if snap == nil {
		buf.WriteString(NothingPlayingTitle + "\n")
		buf.WriteString(NothingPlayingSubtitle + "\n")
		return buf.Bytes()
	}

	buf.WriteString(snap.TrackName + "\n")
	buf.WriteString(snap.ArtistLine() + "\n")
	buf.WriteString(fmt.Sprintf("%s %s / %s\n", state(snap), shared.FormatDuration(snap.Progress()), shared.FormatDuration(snap.Duration())))
	return buf.Bytes()
}

// ToMarkdown renders snap as a short Markdown block with the cover image when one is known.
func ToMarkdown(snap *models.Snapshot) []byte {
	var buf bytes.Buffer

	if snap == nil {
		buf.WriteString(fmt.Sprintf("### %s\n\n_%s_\n", NothingPlayingTitle, NothingPlayingSubtitle))
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("### %s\n\n", snap.TrackName))
	if snap.AlbumArtURL != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", snap.AlbumArtURL))
	}
	buf.WriteString(fmt.Sprintf("**Artists**: %s\n", snap.ArtistLine()))
	buf.WriteString(fmt.Sprintf("**State**: %s\n", state(snap)))
	buf.WriteString(fmt.Sprintf("**Position**: %s / %s\n", shared.FormatDuration(snap.Progress()), shared.FormatDuration(snap.Duration())))
	if snap.TrackID != "" {
		buf.WriteString(fmt.Sprintf("**Track**: https://open.spotify.com/track/%s\n", snap.TrackID))
	}
	return buf.Bytes()
}

func state(snap *models.Snapshot) string {
	if snap.IsPlaying {
		return "Playing"
	}
	return "Paused"
}
