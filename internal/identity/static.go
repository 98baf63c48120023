package identity

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/setlist/internal/shared"
)

// StaticVerifier accepts tokens whose bcrypt hash is listed in the configuration.
type StaticVerifier struct {
	tokens []shared.StaticToken
}

// NewStaticVerifier creates a verifier over the configured token table.
func NewStaticVerifier(tokens []shared.StaticToken) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// Verify compares token against every configured hash.
func (v *StaticVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, shared.ErrInvalidToken
	}

	for _, t := range v.tokens {
		if t.Subject == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(t.Hash), []byte(token)) == nil {
			return &Identity{Subject: t.Subject}, nil
		}
	}
	return nil, shared.ErrInvalidToken
}

// HashToken returns the bcrypt hash to store in [[identity.tokens]].
func HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token is empty", shared.ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}
