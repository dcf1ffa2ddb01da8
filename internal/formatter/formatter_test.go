package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
)

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		IsPlaying:   true,
		TrackID:     "4uLU6hMCjMI75M1A2tKUQC",
		TrackName:   "Never Gonna Give You Up",
		Artists:     []string{"Rick Astley", "Guest"},
		AlbumArtURL: "https://i.scdn.co/image/300",
		ProgressMS:  10000,
		DurationMS:  200000,
		FetchedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatters(t *testing.T) {
	t.Run("ToText", func(t *testing.T) {
		output := string(ToText(testSnapshot()))

		if !strings.Contains(output, "Never Gonna Give You Up\n") {
			t.Errorf("Text missing title, got: %s", output)
		}
		if !strings.Contains(output, "Rick Astley, Guest\n") {
			t.Errorf("Text missing artists, got: %s", output)
		}
		if !strings.Contains(output, "Playing 0:10 / 3:20") {
			t.Errorf("Text missing position, got: %s", output)
		}
	})

	t.Run("ToText when paused", func(t *testing.T) {
		snap := testSnapshot()
		snap.IsPlaying = false
		if output := string(ToText(snap)); !strings.Contains(output, "Paused 0:10 / 3:20") {
			t.Errorf("Text missing paused state, got: %s", output)
		}
	})

	t.Run("ToText with nothing playing", func(t *testing.T) {
		output := string(ToText(nil))
		if output != "Nothing is playing\nKinda quiet :(\n" {
			t.Errorf("unexpected fallback text: %q", output)
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		output := string(ToMarkdown(testSnapshot()))

		for _, want := range []string{
			"### Never Gonna Give You Up",
			"![Cover](https://i.scdn.co/image/300)",
			"**Artists**: Rick Astley, Guest",
			"**Position**: 0:10 / 3:20",
			"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ToMarkdown without cover", func(t *testing.T) {
		snap := testSnapshot()
		snap.AlbumArtURL = ""
		if output := string(ToMarkdown(snap)); strings.Contains(output, "![Cover]") {
			t.Errorf("Markdown should omit cover, got: %s", output)
		}
	})

	t.Run("ToMarkdown with nothing playing", func(t *testing.T) {
		output := string(ToMarkdown(nil))
		if !strings.Contains(output, "### Nothing is playing") || !strings.Contains(output, "_Kinda quiet :(_") {
			t.Errorf("unexpected fallback markdown: %s", output)
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(testSnapshot())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["is_playing"] != true || got["progress_ms"] != float64(10000) || got["title"] != "Never Gonna Give You Up" {
			t.Errorf("unexpected JSON: %s", data)
		}
		if artists, ok := got["artists"].([]any); !ok || len(artists) != 2 {
			t.Errorf("expected two artists, got %v", got["artists"])
		}
	})

	t.Run("ToJSON with nothing playing", func(t *testing.T) {
		data, err := ToJSON(nil)
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, `"is_playing": false`) {
			t.Errorf("expected is_playing false, got: %s", output)
		}
		if strings.Contains(output, "title") || strings.Contains(output, "fetched_at") {
			t.Errorf("expected empty fields omitted, got: %s", output)
		}
	})
}
