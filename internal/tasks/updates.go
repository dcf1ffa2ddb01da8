package tasks

import (
	"fmt"

	"github.com/desertthunder/nowplaying/internal/models"
)

// ProgressUpdate represents a status event from the poll loop.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Poll phase
	Message string // Human-readable message for display
	Err     error  // Set when the phase ended in failure
	Data    any    // Optional phase-specific data (the published snapshot)
}

// Poll phase enumeration
type Phase int

const (
	Authorize Phase = iota
	Query
	Published
	Cleared
	Skipped
	Paused
	Resumed
)

func (p Phase) String() string {
	switch p {
	case Authorize:
		return "authorize"
	case Query:
		return "query"
	case Published:
		return "published"
	case Cleared:
		return "cleared"
	case Skipped:
		return "skipped"
	case Paused:
		return "paused"
	case Resumed:
		return "resumed"
	default:
		return ""
	}
}

func authorizeUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Authorize, Message: "Authorizing with Spotify..."}
}

func queryUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Query, Message: "Fetching currently playing track..."}
}

func publishedUpdate(snap *models.Snapshot) ProgressUpdate {
	state := "paused"
	if snap.IsPlaying {
		state = "playing"
	}
	return ProgressUpdate{
		Phase:   Published,
		Message: fmt.Sprintf("%s - %s (%s)", snap.ArtistLine(), snap.TrackName, state),
		Data:    snap,
	}
}

func clearedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{Phase: Cleared, Message: fmt.Sprintf("Nothing is playing: %v", err), Err: err}
}

func skippedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Skipped, Message: "Previous poll still in flight, tick skipped"}
}

func pausedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Paused, Message: "Polling paused"}
}

func resumedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Resumed, Message: "Polling resumed"}
}
