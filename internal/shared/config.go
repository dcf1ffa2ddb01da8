package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Playback    PlaybackConfig    `toml:"playback"`
	Display     DisplayConfig     `toml:"display"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// RefreshToken is long-lived and may be rotated at runtime by editing the file or re-running auth.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	RedirectURI  string `toml:"redirect_uri"`
}

// PlaybackConfig controls the now-playing poll loop.
type PlaybackConfig struct {
	Market           string  `toml:"market"`
	PollIntervalMS   int     `toml:"poll_interval_ms"`
	RequestTimeoutMS int     `toml:"request_timeout_ms"`
	ArtFetchRate     float64 `toml:"art_fetch_rate"`
}

// DisplayConfig contains rendering settings. Gradient stops are "r g b" triples in the range 0..1.
type DisplayConfig struct {
	VisualiserWidth int    `toml:"visualiser_width"`
	FrameRate       int    `toml:"frame_rate"`
	GradientBar0    string `toml:"gradient_bar_0"`
	GradientBar1    string `toml:"gradient_bar_1"`
	GradientBar2    string `toml:"gradient_bar_2"`
	GradientBar3    string `toml:"gradient_bar_3"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PollInterval returns the configured poll cadence, defaulting to one second.
func (c PlaybackConfig) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the bound applied to every remote request, defaulting to five seconds.
func (c PlaybackConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// FrameInterval returns the time between rendered frames.
func (c DisplayConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Addr returns the host:port the callback server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports configuration values that would make the application misbehave.
//
// Missing credentials are not an error here: they are a standing condition the token manager reports on each attempt.
func (c *Config) Validate() error {
	if c.Playback.PollIntervalMS < 0 {
		return fmt.Errorf("%w: playback.poll_interval_ms must not be negative", ErrInvalidConfig)
	}
	if c.Playback.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: playback.request_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.Display.VisualiserWidth <= 0 {
		return fmt.Errorf("%w: display.visualiser_width must be positive", ErrInvalidConfig)
	}
	if c.Display.FrameRate < 0 {
		return fmt.Errorf("%w: display.frame_rate must not be negative", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to path as TOML, replacing the file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials and market with SPOTIFY_* variables, reading envFile first when it exists.
//
// Variables already present in the process environment win over the file.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
		}
	}

	for name, target := range map[string]*string{
		"SPOTIFY_CLIENT_ID":     &config.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &config.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REFRESH_TOKEN": &config.Credentials.Spotify.RefreshToken,
		"SPOTIFY_MARKET":        &config.Playback.Market,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*target = v
		}
	}
	return nil
}
