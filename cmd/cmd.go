// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Optional .env file with SPOTIFY_* overrides",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

// setupCommand creates the configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml from the default template",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: r.Setup,
	}
}

// authCommand runs the Spotify authorization code flow.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and save the refresh token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the callback",
				Value: defaultAuthTimeout,
			},
		},
		Action: r.Auth,
	}
}

// nowCommand polls once and prints the result.
func nowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "now",
		Usage: "Print the currently playing track",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:    "markdown",
				Aliases: []string{"md"},
				Usage:   "Output Markdown",
			},
		},
		Action: r.Now,
	}
}

// watchCommand launches the TUI.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"tui"},
		Usage:   "Launch the live now-playing view",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the view owns the terminal",
				Value: "./tmp/nowplaying.log",
			},
		},
		Action: r.Watch,
	}
}

// tokenCommand reports the access token state.
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Exchange the refresh token and show the access token's expiry",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Token,
	}
}
