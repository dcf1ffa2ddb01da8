package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/nowplaying/internal/server"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultAuthTimeout = 5 * time.Minute

// Auth performs the OAuth2 authorization code flow and stores the refresh token in the config file.
//
// Starts a local HTTP server, opens the browser for consent and waits for the callback.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: client_id and client_secret must be set in %s or the environment",
			shared.ErrMissingCredentials, r.configPath)
	}

	endpoint := services.SpotifyEndpoint
	if r.tokenURL != "" {
		endpoint.TokenURL = r.tokenURL
	}
	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  r.redirectURI(),
		Scopes:       server.Scopes,
		Endpoint:     endpoint,
	}

	token, err := r.doOAuth(ctx, oauthConfig, cmd.Bool("no-browser"), cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	if err := r.saveRefreshToken(token.RefreshToken); err != nil {
		return err
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("✓ Refresh token saved to %s\n\n", r.configPath)
	return r.writePlain("You can now use: nowplaying watch\n")
}

// doOAuth serves the callback until a result arrives, ctx ends or timeout passes.
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, noBrowser bool, timeout time.Duration) (*oauth2.Token, error) {
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	handler := server.NewOAuthHandler(config, shared.GenerateID(), r.httpClient)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	ready := make(chan string, 1)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx, r.config.Server.Addr(), router, ready) }()

	select {
	case addr := <-ready:
		r.logger.Debug("callback server listening", "addr", addr)
	case err := <-serveErr:
		return nil, err
	}

	authURL := handler.AuthURL()
	if noBrowser {
		r.writePlain("Open this URL to authorize:\n%s\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to authorize:\n%s\n", authURL)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return nil, err
		}
		return result.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for authorization callback", shared.WrapTimeout(ctx.Err()))
	}
}

// saveRefreshToken writes token into the config file, leaving environment overrides out of it.
func (r *Runner) saveRefreshToken(token string) error {
	config, err := r.loadFileConfig()
	if err != nil {
		return err
	}
	config.Credentials.Spotify.RefreshToken = token
	if err := shared.SaveConfig(r.configPath, config); err != nil {
		return err
	}

	r.config.Credentials.Spotify.RefreshToken = token
	r.logger.Info("refresh token saved", "path", r.configPath)
	return nil
}
