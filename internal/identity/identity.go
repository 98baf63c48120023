// package identity resolves bearer credentials to the subject that owns playlists.
//
// Token issuance is delegated to an external provider; this package only verifies.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
)

// Identity is a verified caller.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
}

// Verifier turns an opaque bearer token into an [Identity].
//
// Implementations return [shared.ErrInvalidToken] for credentials that are not accepted.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the caller stored by the auth middleware, or nil for an anonymous request.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// SubjectFromContext returns the caller's subject, or "" when anonymous.
func SubjectFromContext(ctx context.Context) string {
	if id := FromContext(ctx); id != nil {
		return id.Subject
	}
	return ""
}

// BearerToken extracts the token from an Authorization header value.
//
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// New builds the [Verifier] selected by cfg.
func New(cfg shared.IdentityConfig, client *http.Client) (Verifier, error) {
	switch cfg.Provider {
	case shared.IdentityProviderStatic, "":
		return NewStaticVerifier(cfg.Tokens), nil
	case shared.IdentityProviderOAuth:
		if cfg.UserInfoURL == "" {
			return nil, fmt.Errorf("%w: identity.userinfo_url is required for the oauth provider", shared.ErrInvalidConfig)
		}
		return NewRemoteVerifier(cfg.UserInfoURL, cfg.SubjectClaim, client), nil
	default:
		return nil, fmt.Errorf("%w: unknown identity provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}
