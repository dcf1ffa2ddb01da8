package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplaying/internal/assets"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
	"github.com/desertthunder/nowplaying/internal/ui"
	"github.com/urfave/cli/v3"
)

// Watch launches the live now-playing view.
//
// The config file is watched while the view runs, so rotating credentials or gradient colours takes effect
// without a restart.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tasks.ProgressUpdate, 16)
	store, tokens, poller := r.poller(updates)
	defer tokens.Close()

	if err := store.Watch(ctx, r.configPath, r.logger, func(c *shared.Config) error {
		return shared.ApplyEnv(c, r.envFile)
	}); err != nil {
		r.logger.Warn("config reload disabled", "error", err)
	}

	loader := assets.NewHTTPLoader(assets.HTTPLoaderOpts{RateLimit: r.config.Playback.ArtFetchRate})
	cache := assets.NewCache(ctx, loader, r.logger)
	defer cache.Close()

	poller.Start(ctx)
	defer poller.Stop()

	model := ui.NewModel(ctx, ui.ModelOpts{
		Poller:        poller,
		Cache:         cache,
		Source:        store,
		Width:         float64(r.config.Display.VisualiserWidth),
		FrameInterval: r.config.Display.FrameInterval(),
		Updates:       updates,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
