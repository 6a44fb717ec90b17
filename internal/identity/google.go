// Package identity verifies federated login tokens. Only Google id-tokens
// are supported.
package identity

import (
	"context"

	"google.golang.org/api/idtoken"
)

// Payload is the subset of verified token claims the application uses.
// Email may be empty when the provider did not include the claim; callers
// must treat that as a rejected login.
type Payload struct {
	Email string
	Name  string
}

// Verifier checks an externally issued identity token and returns its
// payload. Implementations must reject tokens not issued for the
// configured audience.
type Verifier interface {
	Verify(ctx context.Context, token string) (Payload, error)
}

// GoogleVerifier validates Google id-tokens against a fixed OAuth client
// id. Signature, expiry and audience checks are delegated to the Google
// library, which fetches and caches Google's signing certificates.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID}
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (Payload, error) {
	p, err := idtoken.Validate(ctx, token, g.audience)
	if err != nil {
		return Payload{}, err
	}
	email, _ := p.Claims["email"].(string)
	name, _ := p.Claims["name"].(string)
	return Payload{Email: email, Name: name}, nil
}
