package shared

import (
	"context"
	"fmt"
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/lucasb-eyer/go-colorful"
)

// Option keys understood by [Store].
const (
	OptClientID       = "spotify.client_id"
	OptClientSecret   = "spotify.client_secret"
	OptRefreshToken   = "spotify.refresh_token"
	OptMarket         = "playback.market"
	OptGradientBar0   = "display.gradient_bar_0"
	OptGradientBar1   = "display.gradient_bar_1"
	OptGradientBar2   = "display.gradient_bar_2"
	OptGradientBar3   = "display.gradient_bar_3"
	defaultColorValue = "0.76470588235 0.76470588235 0.76470588235"
)

// GradientOptions lists the progress bar colour stops in order.
var GradientOptions = []string{OptGradientBar0, OptGradientBar1, OptGradientBar2, OptGradientBar3}

// ConfigSource is the read side of the configuration consumed by the playback components.
type ConfigSource interface {
	// HasOption reports whether key is set to a non-empty value.
	HasOption(key string) bool
	// GetOption returns the value for key, or def when it is unset or empty.
	GetOption(key, def string) string
	// GetColorOption parses an "r g b" option with components in 0..1.
	GetColorOption(key string) colorful.Color
	// OnChange registers fn to run after every update. The returned func removes it.
	OnChange(fn func()) (cancel func())
}

// Store is an in-memory [ConfigSource] fed from a [Config].
type Store struct {
	mu        sync.RWMutex
	options   map[string]string
	listeners map[int]func()
	next      int
}

var _ ConfigSource = (*Store)(nil)

// NewStore creates a [Store] holding the options of config. A nil config yields an empty store.
func NewStore(config *Config) *Store {
	s := &Store{options: map[string]string{}, listeners: map[int]func(){}}
	if config != nil {
		s.options = Options(config)
	}
	return s
}

// Options flattens the parts of config exposed through [ConfigSource].
func Options(config *Config) map[string]string {
	return map[string]string{
		OptClientID:     config.Credentials.Spotify.ClientID,
		OptClientSecret: config.Credentials.Spotify.ClientSecret,
		OptRefreshToken: config.Credentials.Spotify.RefreshToken,
		OptMarket:       config.Playback.Market,
		OptGradientBar0: config.Display.GradientBar0,
		OptGradientBar1: config.Display.GradientBar1,
		OptGradientBar2: config.Display.GradientBar2,
		OptGradientBar3: config.Display.GradientBar3,
	}
}

func (s *Store) HasOption(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options[key] != ""
}

func (s *Store) GetOption(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v := s.options[key]; v != "" {
		return v
	}
	return def
}

// GetColorOption falls back to a light grey when the option is unset or unparsable.
func (s *Store) GetColorOption(key string) colorful.Color {
	if c, err := ParseColor(s.GetOption(key, defaultColorValue)); err == nil {
		return c
	}
	c, _ := ParseColor(defaultColorValue)
	return c
}

func (s *Store) OnChange(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Update replaces every option with those of config and notifies listeners.
func (s *Store) Update(config *Config) {
	s.mu.Lock()
	s.options = Options(config)
	s.mu.Unlock()
	s.notify()
}

// Set changes a single option and notifies listeners.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.options[key] = value
	s.mu.Unlock()
	s.notify()
}

// notify runs listeners outside the lock so they may read the store.
func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, id := range slices.Sorted(maps.Keys(s.listeners)) {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Watch reloads the file at path into the store whenever it is written, created or renamed into place.
//
// prepare, when non-nil, runs on each freshly loaded config before it is applied (env overrides).
// Reload failures are logged and the previous options are kept. Watching stops when ctx is done.
func (s *Store) Watch(ctx context.Context, path string, logger *log.Logger, prepare func(*Config) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	// Editors often replace the file, so watch the directory and filter by name.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				s.reload(abs, logger, prepare)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

func (s *Store) reload(path string, logger *log.Logger, prepare func(*Config) error) {
	config, err := LoadConfig(path)
	if err != nil {
		logger.Warn("failed to reload config, keeping previous values", "error", err)
		return
	}
	if prepare != nil {
		if err := prepare(config); err != nil {
			logger.Warn("failed to prepare reloaded config", "error", err)
			return
		}
	}
	logger.Info("config reloaded", "path", path)
	s.Update(config)
}

// ParseColor parses "r g b" with components in 0..1, rounding each to an 8-bit channel like the display does.
func ParseColor(value string) (colorful.Color, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return colorful.Color{}, fmt.Errorf("%w: colour %q needs three components", ErrInvalidConfig, value)
	}

	var rgb [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("%w: colour %q: %v", ErrInvalidConfig, value, err)
		}
		rgb[i] = math.Round(math.Max(0, math.Min(1, v))*255) / 255
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
