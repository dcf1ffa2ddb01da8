package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Playback.Market != "ES" {
			t.Errorf("expected market ES, got %s", config.Playback.Market)
		}

		if config.Playback.PollInterval() != time.Second {
			t.Errorf("expected poll interval 1s, got %v", config.Playback.PollInterval())
		}

		if config.Display.VisualiserWidth != 500 {
			t.Errorf("expected visualiser width 500, got %d", config.Display.VisualiserWidth)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Display.VisualiserWidth != DefaultConfig().Display.VisualiserWidth {
			t.Errorf("created config visualiser width doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("overrides defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
refresh_token = "test_refresh"

[playback]
market = "GB"
poll_interval_ms = 2500
`
			if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.Credentials.Spotify.RefreshToken != "test_refresh" {
				t.Errorf("expected refresh token test_refresh, got %s", config.Credentials.Spotify.RefreshToken)
			}
			if config.Playback.PollInterval() != 2500*time.Millisecond {
				t.Errorf("expected 2.5s interval, got %v", config.Playback.PollInterval())
			}
			if config.Display.VisualiserWidth != 500 {
				t.Errorf("expected default visualiser width to survive, got %d", config.Display.VisualiserWidth)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("invalid toml", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(configPath, []byte("[playback\nmarket ="), 0644)

			if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("invalid values", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(configPath, []byte("[display]\nvisualiser_width = 0\n"), 0644)

			if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("SaveConfig round trips the refresh token", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.RefreshToken = "rotated"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.Credentials.Spotify.RefreshToken != "rotated" {
			t.Errorf("expected rotated refresh token, got %q", loaded.Credentials.Spotify.RefreshToken)
		}
	})

	t.Run("Durations fall back to defaults", func(t *testing.T) {
		var p PlaybackConfig
		if p.PollInterval() != time.Second {
			t.Errorf("expected 1s, got %v", p.PollInterval())
		}
		if p.RequestTimeout() != 5*time.Second {
			t.Errorf("expected 5s, got %v", p.RequestTimeout())
		}

		var d DisplayConfig
		if d.FrameInterval() != time.Second/30 {
			t.Errorf("expected 30fps, got %v", d.FrameInterval())
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		os.WriteFile(envFile, []byte("SPOTIFY_REFRESH_TOKEN=from_file\nSPOTIFY_MARKET=US\n"), 0644)
		t.Setenv("SPOTIFY_CLIENT_ID", "from_env")
		t.Setenv("SPOTIFY_REFRESH_TOKEN", "")
		t.Setenv("SPOTIFY_MARKET", "")
		os.Unsetenv("SPOTIFY_REFRESH_TOKEN")
		os.Unsetenv("SPOTIFY_MARKET")

		config := DefaultConfig()
		if err := ApplyEnv(config, envFile); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from_env" {
			t.Errorf("expected client id from env, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.RefreshToken != "from_file" {
			t.Errorf("expected refresh token from .env, got %q", config.Credentials.Spotify.RefreshToken)
		}
		if config.Playback.Market != "US" {
			t.Errorf("expected market US, got %q", config.Playback.Market)
		}
	})
}
