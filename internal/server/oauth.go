package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/setlist/internal/shared"
)

// OAuthResult carries the outcome of one authorization code exchange.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// OAuthHandler serves the redirect target of an authorization code flow with PKCE.
//
// Only the first callback is processed; later ones get 400.
type OAuthHandler struct {
	config   *oauth2.Config
	state    string
	verifier string
	path     string

	results chan OAuthResult
	once    sync.Once

	mu  sync.Mutex
	hit bool
}

// NewOAuthHandler creates a handler with a fresh state and PKCE verifier.
// The callback path is taken from config.RedirectURL, defaulting to /callback.
func NewOAuthHandler(config *oauth2.Config) *OAuthHandler {
	path := "/callback"
	if u, err := url.Parse(config.RedirectURL); err == nil && u.Path != "" {
		path = u.Path
	}

	return &OAuthHandler{
		config:   config,
		state:    shared.GenerateID(),
		verifier: oauth2.GenerateVerifier(),
		path:     path,
		results:  make(chan OAuthResult, 1),
	}
}

// AuthCodeURL is the URL the user should visit to authorize.
func (h *OAuthHandler) AuthCodeURL() string {
	return h.config.AuthCodeURL(h.state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(h.verifier))
}

func (h *OAuthHandler) Register(r Router) {
	r.Handle(http.MethodGet, h.path, http.HandlerFunc(h.callback))
}

func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.send(OAuthResult{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(OAuthResult{Err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))})
		http.Error(w, "authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code, oauth2.VerifierOption(h.verifier))
	if err != nil {
		h.send(OAuthResult{Err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "token exchange failed", http.StatusBadGateway)
		return
	}

	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = successPage.Execute(w, nil)
}

func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Wait blocks until the callback has been processed or ctx is done.
func (h *OAuthHandler) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case result := <-h.results:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Token == nil {
			return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		return result.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for authorization: %v", shared.ErrTimeout, ctx.Err())
	}
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>setlist</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh">
  <h1>Signed in</h1>
  <p>You can close this window and return to the terminal.</p>
</body>
</html>
`))
