package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// non-local accounts. Callers must not distinguish between them.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the token's exp claim has passed
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed indicates a bad signature or unparseable token
	ErrTokenMalformed = errors.New("token malformed")

	// ErrForbidden indicates a valid identity without the required privilege
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateAccount indicates the email is already registered
	ErrDuplicateAccount = errors.New("user already exists")

	// ErrUserNotFound indicates no user matched the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput indicates a malformed request field
	ErrInvalidInput = errors.New("invalid input")

	// ErrPasswordRequired indicates an empty password
	ErrPasswordRequired = errors.New("password is required")

	// ErrPasswordTooLong indicates a password over bcrypt's 72 byte limit
	ErrPasswordTooLong = errors.New("password is too long")

	// ErrTokenGeneration indicates signing failed
	ErrTokenGeneration = errors.New("failed to generate token")
)
