package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var styles = NewPalette("#FFFFFF", "#C3C3C3", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:    NewBold(t),
		subtitle: NewStyle(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// gradientStops are the positions of the four configured bar colours along the bar.
var gradientStops = []float64{0, 0.25, 0.5, 0.75}

// Gradient returns the colour at t in [0, 1] along a linear gradient through colors placed at [gradientStops].
// Past the last stop the last colour holds.
func Gradient(colors []colorful.Color, t float64) colorful.Color {
	if len(colors) == 0 {
		return colorful.Color{}
	}
	n := min(len(colors), len(gradientStops))
	if t <= gradientStops[0] {
		return colors[0]
	}
	for i := 1; i < n; i++ {
		if t <= gradientStops[i] {
			lo, hi := gradientStops[i-1], gradientStops[i]
			return colors[i-1].BlendLuv(colors[i], (t-lo)/(hi-lo)).Clamped()
		}
	}
	return colors[n-1]
}
