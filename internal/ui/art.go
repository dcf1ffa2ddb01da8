package ui

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/nowplaying/internal/assets"
	"github.com/lucasb-eyer/go-colorful"
)

// artCells is the width of the rendered cover in terminal cells. Each cell shows two pixels stacked with "▀".
const artCells = 20

// renderArt draws img as artCells×artCells/2 half-block cells.
func renderArt(img image.Image) string {
	if img == nil {
		return blankArt()
	}

	small := assets.Scale(img, artCells)
	b := small.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hex(small, x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = hex(small, x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func blankArt() string {
	row := strings.Repeat(" ", artCells)
	rows := make([]string, artCells/2)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func hex(img image.Image, x, y int) string {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return "#000000"
	}
	return c.Hex()
}
