package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	envFile    string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// Endpoint overrides for tests; empty means the real Spotify endpoints.
	tokenURL string
	apiURL   string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	TokenURL   string
	APIURL     string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		tokenURL:   opts.TokenURL,
		apiURL:     opts.APIURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, nowCommand, watchCommand, tokenCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before reads the global flags and loads the configuration for every command.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.configPath = cmd.String("config")
	r.envFile = cmd.String("env")

	config, err := r.loadConfig()
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// loadConfig reads the config file (defaults when it is missing) and applies environment overrides.
func (r *Runner) loadConfig() (*shared.Config, error) {
	config, err := r.loadFileConfig()
	if err != nil {
		return nil, err
	}
	if err := shared.ApplyEnv(config, r.envFile); err != nil {
		return nil, err
	}
	return config, nil
}

// loadFileConfig reads the config file without environment overrides, so it can be saved back safely.
func (r *Runner) loadFileConfig() (*shared.Config, error) {
	config, err := shared.LoadConfig(r.configPath)
	switch {
	case err == nil:
		return config, nil
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		return shared.DefaultConfig(), nil
	default:
		return nil, err
	}
}

// SetLogger swaps the logger, e.g. for a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// spotify wires a TokenManager and SpotifyClient over store.
func (r *Runner) spotify(store shared.ConfigSource) (*services.TokenManager, *services.SpotifyClient) {
	client := &http.Client{Transport: r.httpClient.Transport, Timeout: r.config.Playback.RequestTimeout()}

	tokens := services.NewTokenManager(store, services.TokenManagerOpts{
		HTTPClient: client,
		TokenURL:   r.tokenURL,
		Logger:     r.logger,
	})
	spotify := services.NewSpotifyClient(tokens, store, services.SpotifyClientOpts{
		HTTPClient: client,
		BaseURL:    r.apiURL,
	})
	return tokens, spotify
}

// poller builds a Poller over a fresh Store of the current config.
func (r *Runner) poller(updates chan<- tasks.ProgressUpdate) (*shared.Store, *services.TokenManager, *tasks.Poller) {
	store := shared.NewStore(r.config)
	tokens, spotify := r.spotify(store)
	poller := tasks.NewPoller(tokens, spotify, tasks.PollerOpts{
		Interval: r.config.Playback.PollInterval(),
		Timeout:  r.config.Playback.RequestTimeout(),
		Logger:   r.logger,
		Updates:  updates,
	})
	return store, tokens, poller
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
