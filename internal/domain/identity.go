package domain

import "context"

// Identity is an authenticated caller as established by the external identity
// provider.
type Identity struct {
	UserID string
	Admin  bool
}

// IdentityVerifier validates a bearer token issued by the identity provider.
// Fails with ErrInvalidToken for anything that does not verify.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}
