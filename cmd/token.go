package main

import (
	"context"
	"time"

	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// tokenStatus is the JSON shape printed by `nowplaying token --json`.
type tokenStatus struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   string    `json:"expires_in"`
}

// Token exchanges the refresh token and prints a masked access token with its expiry.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	store := shared.NewStore(r.config)
	tokens, _ := r.spotify(store)
	defer tokens.Close()

	if err := tokens.Authorize(ctx); err != nil {
		return err
	}

	tok := tokens.Token()
	status := tokenStatus{
		AccessToken: mask(tok.AccessToken),
		ExpiresAt:   tok.ExpiresAt,
		ExpiresIn:   time.Until(tok.ExpiresAt).Round(time.Second).String(),
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}
	r.writePlain("Access token: %s\n", status.AccessToken)
	return r.writePlain("Expires at:   %s (in %s)\n", status.ExpiresAt.Format(time.RFC3339), status.ExpiresIn)
}

// mask keeps the first and last four characters of a secret.
func mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
