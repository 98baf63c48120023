package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/desertthunder/setlist/internal/shared"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthRouter(t *testing.T) (*OAuthHandler, *BasicRouter) {
	t.Helper()
	tokenSrv := newTokenServer(t)
	h := NewOAuthHandler(&oauth2.Config{
		ClientID:    "setlist",
		RedirectURL: "http://127.0.0.1:8085/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://id.example.com/authorize",
			TokenURL: tokenSrv.URL,
		},
	})
	router := NewBasicRouter()
	router.Handler(h)
	return h, router
}

func callback(router http.Handler, query url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?"+query.Encode(), nil))
	return rec
}

func TestOAuthHandler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("auth code url carries state and challenge", func(t *testing.T) {
		h, _ := newOAuthRouter(t)
		u, err := url.Parse(h.AuthCodeURL())
		require.NoError(t, err)
		assert.Equal(t, h.state, u.Query().Get("state"))
		assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
		assert.NotEmpty(t, u.Query().Get("code_challenge"))
	})

	t.Run("exchanges code", func(t *testing.T) {
		h, router := newOAuthRouter(t)
		rec := callback(router, url.Values{"state": {h.state}, "code": {"good-code"}})
		assert.Equal(t, http.StatusOK, rec.Code)

		token, err := h.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-123", token.AccessToken)

		rec = callback(router, url.Values{"state": {h.state}, "code": {"good-code"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "second callback is rejected")
	})

	t.Run("state mismatch", func(t *testing.T) {
		h, router := newOAuthRouter(t)
		rec := callback(router, url.Values{"state": {"forged"}, "code": {"good-code"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := h.Wait(ctx)
		assert.True(t, errors.Is(err, shared.ErrAuthFailed))
	})

	t.Run("provider error", func(t *testing.T) {
		h, router := newOAuthRouter(t)
		rec := callback(router, url.Values{"state": {h.state}, "error": {"access_denied"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := h.Wait(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access_denied")
	})

	t.Run("exchange failure", func(t *testing.T) {
		h, router := newOAuthRouter(t)
		rec := callback(router, url.Values{"state": {h.state}, "code": {"bad-code"}})
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		_, err := h.Wait(ctx)
		assert.True(t, errors.Is(err, shared.ErrAuthFailed))
	})

	t.Run("timeout", func(t *testing.T) {
		h, _ := newOAuthRouter(t)
		short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := h.Wait(short)
		assert.True(t, errors.Is(err, shared.ErrTimeout))
	})
}
