package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyEndpoint is the accounts service used for both the authorization code flow and refresh exchanges.
var SpotifyEndpoint = oauth2.Endpoint{
	AuthURL:   spotifyAuthURL,
	TokenURL:  spotifyTokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Authorizer provides credentials for data requests.
type Authorizer interface {
	// Authorize ensures a valid access token is cached, exchanging the refresh token if needed.
	Authorize(ctx context.Context) error
	// AuthorizationHeader returns the value for the Authorization header.
	AuthorizationHeader() string
	// Invalidate drops the cached access token so the next Authorize performs an exchange.
	Invalidate()
}

// TokenManagerOpts contains optional dependencies for [NewTokenManager].
type TokenManagerOpts struct {
	HTTPClient *http.Client     // Defaults to a client with a 5s timeout
	TokenURL   string           // Defaults to the Spotify accounts token endpoint
	Now        func() time.Time // Defaults to time.Now
	Logger     *log.Logger
}

// TokenManager implements [Authorizer] with the refresh-token grant.
type TokenManager struct {
	source      shared.ConfigSource
	httpClient  *http.Client
	tokenURL    string
	now         func() time.Time
	logger      *log.Logger
	group       singleflight.Group
	unsubscribe func()

	mu           sync.Mutex
	token        models.AccessToken
	clientID     string
	clientSecret string
	configured   string // refresh token as last read from source
	generation   uint64
}

var _ Authorizer = (*TokenManager)(nil)

// NewTokenManager creates a TokenManager reading credentials from source and subscribing to its changes.
func NewTokenManager(source shared.ConfigSource, opts TokenManagerOpts) *TokenManager {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	m := &TokenManager{
		source:     source,
		httpClient: opts.HTTPClient,
		tokenURL:   opts.TokenURL,
		now:        opts.Now,
		logger:     shared.WithLogger(opts.Logger, "component", "tokens"),
	}
	m.credentialsChanged()
	m.unsubscribe = source.OnChange(m.credentialsChanged)
	return m
}

// Close stops listening for credential changes.
func (m *TokenManager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// credentialsChanged drops the cached access token when any credential differs from what was last seen.
//
// The exchange itself is deferred to the next Authorize call.
func (m *TokenManager) credentialsChanged() {
	id := m.source.GetOption(shared.OptClientID, "")
	secret := m.source.GetOption(shared.OptClientSecret, "")
	refresh := m.source.GetOption(shared.OptRefreshToken, "")

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.clientID && secret == m.clientSecret && refresh == m.configured {
		return
	}

	changedAfterStart := m.generation > 0
	m.clientID, m.clientSecret, m.configured = id, secret, refresh
	m.token = models.AccessToken{RefreshToken: refresh}
	m.generation++

	if changedAfterStart {
		m.logger.Info("credentials changed, access token invalidated")
	}
}

// Authorize returns immediately when the cached token is still valid. Otherwise it joins (or starts) the single
// in-flight exchange and returns its outcome.
//
// The exchange does not inherit ctx cancellation, since other callers may be waiting on it; it is bounded by the HTTP
// client's timeout instead. ctx only limits how long this caller waits.
func (m *TokenManager) Authorize(ctx context.Context) error {
	if m.valid() {
		return nil
	}

	ch := m.group.DoChan("refresh", func() (any, error) {
		return nil, m.refresh()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", shared.ErrAuthExchange, shared.WrapTimeout(ctx.Err()))
	}
}

func (m *TokenManager) valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.token.HasExpired(m.now())
}

func (m *TokenManager) refresh() error {
	m.mu.Lock()
	if !m.token.HasExpired(m.now()) {
		m.mu.Unlock()
		return nil
	}
	gen := m.generation
	refreshToken := m.token.RefreshToken
	clientID, clientSecret := m.clientID, m.clientSecret
	m.mu.Unlock()

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return fmt.Errorf("%w: %w", shared.ErrAuthExchange, shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  m.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, m.httpClient)
	tok, err := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		m.logger.Warn("token exchange failed", "error", err)
		return fmt.Errorf("%w: %w", shared.ErrAuthExchange, shared.WrapTimeout(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		m.logger.Info("discarding token minted from superseded credentials")
		return fmt.Errorf("%w: %w", shared.ErrAuthExchange, shared.ErrCredentialsChanged)
	}

	next := models.AccessToken{AccessToken: tok.AccessToken, RefreshToken: refreshToken}
	if d := expiresIn(tok); d > 0 {
		next.ExpiresAt = m.now().Add(d)
	}
	if tok.RefreshToken != "" && tok.RefreshToken != refreshToken {
		m.logger.Info("refresh token rotated by server")
		next.RefreshToken = tok.RefreshToken
	}
	m.token = next

	m.logger.Info("access token refreshed", "expires_at", next.ExpiresAt.Format(time.RFC3339))
	return nil
}

// expiresIn reads the expires_in field from the raw token response, falling back to the library's Expiry.
func expiresIn(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return time.Duration(n * float64(time.Second))
		}
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(n * float64(time.Second))
		}
	}
	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry)
	}
	return 0
}

// AuthorizationHeader returns "Bearer <token>" while the cached token is valid, and otherwise the Basic client
// credential header used for the token exchange.
func (m *TokenManager) AuthorizationHeader() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.token.HasExpired(m.now()) {
		return "Bearer " + m.token.AccessToken
	}
	return BasicAuthHeader(m.clientID, m.clientSecret)
}

// Invalidate drops the cached access token so the next Authorize performs a refresh. The refresh token is kept.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token.AccessToken = ""
	m.token.ExpiresAt = time.Time{}
}

// Token returns a copy of the cached token.
func (m *TokenManager) Token() models.AccessToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// BasicAuthHeader builds "Basic base64(clientID:clientSecret)".
func BasicAuthHeader(clientID, clientSecret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(clientID+":"+clientSecret))
}
