package shared

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	t.Run("options from config", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Spotify.RefreshToken = ""
		store := NewStore(config)

		if !store.HasOption(OptClientID) {
			t.Error("expected client id option")
		}
		if store.HasOption(OptRefreshToken) {
			t.Error("empty refresh token should not count as set")
		}
		if got := store.GetOption(OptRefreshToken, "fallback"); got != "fallback" {
			t.Errorf("expected fallback, got %q", got)
		}
		if got := store.GetOption(OptMarket, "US"); got != "ES" {
			t.Errorf("expected ES, got %q", got)
		}
	})

	t.Run("GetColorOption", func(t *testing.T) {
		store := NewStore(nil)
		store.Set(OptGradientBar0, "1 1 0")
		store.Set(OptGradientBar1, "not a colour")

		if got := store.GetColorOption(OptGradientBar0).Hex(); got != "#ffff00" {
			t.Errorf("expected #ffff00, got %s", got)
		}
		if got := store.GetColorOption(OptGradientBar1).Hex(); got != "#c3c3c3" {
			t.Errorf("expected default grey for invalid value, got %s", got)
		}
		if got := store.GetColorOption(OptGradientBar2).Hex(); got != "#c3c3c3" {
			t.Errorf("expected default grey for unset value, got %s", got)
		}
	})

	t.Run("OnChange", func(t *testing.T) {
		store := NewStore(DefaultConfig())
		calls := 0
		cancel := store.OnChange(func() {
			calls++
			// listeners may read the store
			store.GetOption(OptRefreshToken, "")
		})

		store.Set(OptRefreshToken, "new")
		store.Update(DefaultConfig())
		if calls != 2 {
			t.Errorf("expected 2 notifications, got %d", calls)
		}

		cancel()
		store.Set(OptRefreshToken, "newer")
		if calls != 2 {
			t.Errorf("expected no notification after cancel, got %d", calls)
		}
	})

	t.Run("Watch reloads on write", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}

		store := NewStore(DefaultConfig())
		changed := make(chan string, 8)
		store.OnChange(func() { changed <- store.GetOption(OptRefreshToken, "") })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := store.Watch(ctx, configPath, NewLogger(nil), nil); err != nil {
			t.Fatalf("Watch() error = %v", err)
		}

		config := DefaultConfig()
		config.Credentials.Spotify.RefreshToken = "rotated"
		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		deadline := time.After(5 * time.Second)
		for {
			select {
			case token := <-changed:
				if token == "rotated" {
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for reload")
			}
		}
	})

	t.Run("Watch keeps values when reload fails", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		CreateConfigFile(configPath)

		store := NewStore(DefaultConfig())
		store.Set(OptRefreshToken, "kept")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := store.Watch(ctx, configPath, NewLogger(nil), nil); err != nil {
			t.Fatalf("Watch() error = %v", err)
		}

		os.WriteFile(configPath, []byte("[broken"), 0644)
		time.Sleep(200 * time.Millisecond)

		if got := store.GetOption(OptRefreshToken, ""); got != "kept" {
			t.Errorf("expected kept refresh token, got %q", got)
		}
	})
}

func TestParseColor(t *testing.T) {
	tc := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "white", value: "1 1 1", want: "#ffffff"},
		{name: "original default", value: "0.76470588235 0.76470588235 0.76470588235", want: "#c3c3c3"},
		{name: "clamped", value: "2 -1 0.5", want: "#ff0080"},
		{name: "extra whitespace", value: "  0   1  0 ", want: "#00ff00"},
		{name: "too few", value: "1 1", wantErr: true},
		{name: "not numbers", value: "a b c", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Hex() != tt.want {
				t.Errorf("ParseColor() = %v, want %v", got.Hex(), tt.want)
			}
		})
	}
}
