package auth

import (
	"context"
	"strings"
	"time"
)

// Provider identifies how a user authenticates
type Provider string

const (
	ProviderLocal  Provider = "local"  // Email + password
	ProviderGoogle Provider = "google" // Google OAuth2 / OpenID Connect
)

// Valid reports whether p is a known provider
func (p Provider) Valid() bool {
	return p == ProviderLocal || p == ProviderGoogle
}

// User represents an account in the credential store
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose hash
	Provider     Provider  `json:"provider"`
	IsAdmin      bool      `json:"isAdmin"`
	FederatedID  string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	AvatarURL    string    `json:"profilePicture,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the user can sign in with a local password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PublicUser is the user shape returned by the auth endpoints
type PublicUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Public returns the subset of the user safe to hand to clients
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Identity is the verified caller attached to a request by the auth gate.
// IsAdmin is a snapshot taken when the token was minted.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// UserStore persists users. Implementations must enforce email uniqueness
// and return ErrDuplicateAccount on violation and ErrUserNotFound on misses.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail performs a minimal shape check
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
