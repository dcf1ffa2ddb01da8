package playback

import (
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
)

// Estimator tracks the progress bar position, in pixels, for a bar of a given width.
//
// It is owned by the render loop and is not safe for concurrent use.
type Estimator struct {
	width    float64
	progress float64
	snap     *models.Snapshot
}

// NewEstimator returns an Estimator for a bar width pixels wide.
func NewEstimator(width float64) *Estimator {
	return &Estimator{width: max(width, 0)}
}

// Update folds one frame into the estimate and returns the new bar length in [0, width].
//
// Snapshots are compared by identity: the poller publishes a new pointer for every successful poll, so a different
// pointer is always fresh ground truth even when the values are equal.
func (e *Estimator) Update(snap *models.Snapshot, dt time.Duration) float64 {
	switch {
	case snap == nil:
		e.snap = nil
		e.progress = 0
	case snap != e.snap:
		e.snap = snap
		e.progress = snap.Fraction() * e.width
	case snap.IsPlaying && snap.DurationMS > 0 && dt > 0:
		e.progress += e.width * float64(dt) / float64(snap.Duration())
	}

	e.progress = clamp(e.progress, 0, e.width)
	return e.progress
}

// Progress returns the current bar length without advancing it.
func (e *Estimator) Progress() float64 {
	return e.progress
}

// Fraction returns the bar length as a fraction of the width.
func (e *Estimator) Fraction() float64 {
	if e.width == 0 {
		return 0
	}
	return e.progress / e.width
}

// Position converts the estimate back to a playback position in the current track.
func (e *Estimator) Position() time.Duration {
	if e.snap == nil {
		return 0
	}
	return time.Duration(e.Fraction() * float64(e.snap.Duration()))
}

// Width returns the bar width.
func (e *Estimator) Width() float64 {
	return e.width
}

// SetWidth changes the bar width, keeping the same relative position.
func (e *Estimator) SetWidth(width float64) {
	width = max(width, 0)
	frac := e.Fraction()
	e.width = width
	e.progress = clamp(frac*width, 0, width)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
