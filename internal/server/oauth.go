package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/nowplaying/internal/shared"
	"golang.org/x/oauth2"
)

// Scopes needed to read the player state.
var Scopes = []string{"user-read-currently-playing", "user-read-playback-state"}

const (
	loginPath    = "/login"
	callbackPath = "/callback"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the login redirect and the authorization code callback.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	httpClient *http.Client
	resultChan chan OAuthResult
	once       sync.Once

	mu          sync.Mutex
	callbackHit bool
}

// NewOAuthHandler creates a handler for config. state should be random (see [shared.GenerateID]).
//
// httpClient is used for the code exchange; nil means [http.DefaultClient].
func NewOAuthHandler(config *oauth2.Config, state string, httpClient *http.Client) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		httpClient: httpClient,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{loginPath, callbackPath}
}

// AuthURL is the consent page the user must visit.
func (h *OAuthHandler) AuthURL() string {
	return h.config.AuthCodeURL(h.state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case loginPath:
		http.Redirect(w, r, h.AuthURL(), http.StatusFound)
	case callbackPath:
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// callback validates state, exchanges the code and sends the token. Only the first callback is processed.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthExchange)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: authorization denied: %s", shared.ErrAuthExchange, query.Get("error"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, h.httpClient)
	}

	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("%w: %w", shared.ErrAuthExchange, shared.WrapTimeout(err))})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}
	if token.RefreshToken == "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: response has no refresh_token", shared.ErrAuthExchange)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel. It receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>nowplaying</title>
    <style>
        body { font-family: "Arial Black", sans-serif; display: flex; align-items: center;
               justify-content: center; height: 100vh; margin: 0; background: #111; color: #c3c3c3; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
    </style>
</head>
<body>
    <div>
        <h1>Authorized</h1>
        <p>The refresh token has been saved. You can close this window.</p>
    </div>
</body>
</html>
`
