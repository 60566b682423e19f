package sso

import "context"

// Profile is the identity a provider vouches for after a successful exchange
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityProvider drives one OAuth2 authorization-code flow
type IdentityProvider interface {
	// Name is the provider label used in logs and metrics
	Name() string

	// AuthCodeURL returns the consent screen URL carrying state
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a verified profile
	Exchange(ctx context.Context, code string) (*Profile, error)
}
