package main

import (
	"context"
	"errors"

	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// Now runs a single poll and prints the snapshot as text, JSON or Markdown.
//
// Nothing playing is a normal outcome and prints the fallback; other failures print the fallback and are returned.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	_, tokens, poller := r.poller(nil)
	defer tokens.Close()

	err := poller.Poll(ctx)
	if err != nil && !errors.Is(err, shared.ErrNothingPlaying) {
		r.logger.Warn("poll failed", "error", err)
	} else {
		err = nil
	}

	snap := poller.Snapshot()
	switch {
	case cmd.Bool("json"):
		data, jsonErr := formatter.ToJSON(snap)
		if jsonErr != nil {
			return jsonErr
		}
		if writeErr := r.writeBytes(data); writeErr != nil {
			return writeErr
		}
	case cmd.Bool("markdown"):
		if writeErr := r.writeBytes(formatter.ToMarkdown(snap)); writeErr != nil {
			return writeErr
		}
	default:
		if writeErr := r.writeBytes(formatter.ToText(snap)); writeErr != nil {
			return writeErr
		}
	}
	return err
}
