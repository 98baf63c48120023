package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
)

const defaultLoginTimeout = 2 * time.Minute

// oauthConfig builds the client registration for `auth login`.
func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	c := r.config.OAuth
	if c.ClientID == "" || c.ClientID == "your_client_id" {
		return nil, fmt.Errorf("%w: oauth.client_id must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}
	if c.AuthURL == "" || c.TokenURL == "" || c.RedirectURI == "" {
		return nil, fmt.Errorf("%w: oauth.auth_url, oauth.token_url and oauth.redirect_uri are required", shared.ErrInvalidConfig)
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
	}, nil
}

// AuthLogin performs the OAuth2 authorization code flow (with PKCE) against the identity provider.
//
// Starts a local HTTP server on the redirect URI, opens the browser for user authorization,
// and stores the access token as client.token in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.oauthConfig()
	if err != nil {
		return err
	}

	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: oauth.redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	handler := server.NewOAuthHandler(config)
	router := server.NewBasicRouter()
	router.Handler(handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}
	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", redirect.Host)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := handler.AuthCodeURL()
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for authorization...\n")
		if err := r.browser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		token *oauth2.Token
		err   error
	}
	results := make(chan outcome, 1)
	go func() {
		token, err := handler.Wait(waitCtx)
		results <- outcome{token, err}
	}()

	var result outcome
	select {
	case result = <-results:
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	}
	if result.err != nil {
		return fmt.Errorf("authorization failed: %w", result.err)
	}

	r.config.Client.Token = result.token.AccessToken
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.api = nil
	r.connect()

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: setlist playlists list\n")
	return nil
}

// AuthStatus checks service health and whether the configured token is accepted.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status", "base_url", r.config.Client.BaseURL)

	resp, err := r.api.Get(ctx, "/health")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	r.writePlain("✓ Service is healthy\n")

	if r.config.Client.Token == "" {
		return r.writePlain("Authentication: ✗ No token configured (run setlist auth login)\n")
	}

	playlists, err := r.api.MyPlaylists(ctx)
	switch {
	case err == nil:
		return r.writePlain("Authentication: ✓ Authenticated (%d playlists)\n", len(playlists))
	case errors.Is(err, shared.ErrUnauthorized):
		return r.writePlain("Authentication: ✗ Token rejected\n")
	default:
		return err
	}
}

// AuthHashToken prints the bcrypt hash of a token for the static verifier.
func (r *Runner) AuthHashToken(ctx context.Context, cmd *cli.Command) error {
	hash, err := identity.HashToken(cmd.StringArg("token"))
	if err != nil {
		return err
	}

	subject := cmd.String("subject")
	if subject == "" {
		return r.writePlain("%s\n", hash)
	}
	return r.writePlain("[[identity.tokens]]\nsubject = %q\nhash = %q\n", subject, hash)
}
