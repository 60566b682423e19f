package sso

import "errors"

var (
	// ErrProfileIncomplete is returned when the provider profile lacks an email or subject
	ErrProfileIncomplete = errors.New("provider profile is incomplete")

	// ErrEmailUnverified is returned when the provider has not verified the email
	ErrEmailUnverified = errors.New("provider email is not verified")

	// ErrAccountConflict is returned when the email belongs to an account that cannot be linked
	ErrAccountConflict = errors.New("account exists with a different sign-in method")

	// ErrInvalidState is returned when the callback state does not match the login attempt
	ErrInvalidState = errors.New("invalid oauth state")
)
