package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/desertthunder/setlist/internal/shared"
)

// RemoteVerifier asks the identity provider's userinfo endpoint who a token belongs to.
type RemoteVerifier struct {
	userInfoURL  string
	subjectClaim string
	httpClient   *http.Client
}

// NewRemoteVerifier creates a verifier for userInfoURL.
//
// subjectClaim defaults to "sub" and client to [http.DefaultClient].
func NewRemoteVerifier(userInfoURL, subjectClaim string, client *http.Client) *RemoteVerifier {
	if subjectClaim == "" {
		subjectClaim = "sub"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteVerifier{userInfoURL: userInfoURL, subjectClaim: subjectClaim, httpClient: client}
}

// Verify calls the userinfo endpoint with token as the bearer credential.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, shared.ErrInvalidToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrIdentityError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrIdentityError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, shared.ErrInvalidToken
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: userinfo returned status %d", shared.ErrIdentityError, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read userinfo: %v", shared.ErrIdentityError, err)
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse userinfo: %v", shared.ErrIdentityError, err)
	}

	subject := claimString(claims[v.subjectClaim])
	if subject == "" {
		return nil, shared.ErrInvalidToken
	}

	return &Identity{Subject: subject, Email: claimString(claims["email"])}, nil
}

// claimString accepts string and numeric claims; some providers send numeric user ids.
func claimString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return ""
	}
}
