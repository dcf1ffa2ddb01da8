package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default config.toml, refusing to overwrite an existing file unless --force is set.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err == nil {
		if !cmd.Bool("force") {
			r.logger.Info("config file already exists", "path", r.configPath)
			return r.writePlain("Config already exists at %s (use --force to overwrite)\n", r.configPath)
		}
		if err := os.Remove(r.configPath); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)

	r.writePlain("✓ Config written to %s\n\n", r.configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Create an app at https://developer.spotify.com/dashboard with redirect URI %s\n", r.redirectURI())
	r.writePlain("2. Set credentials.spotify.client_id and client_secret (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)\n")
	return r.writePlain("3. Run 'nowplaying auth' to obtain a refresh token\n")
}

func (r *Runner) redirectURI() string {
	if uri := r.config.Credentials.Spotify.RedirectURI; uri != "" {
		return uri
	}
	return fmt.Sprintf("http://%s/callback", r.config.Server.Addr())
}
