package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements local registration and login on top of a UserStore
type Service struct {
	store     UserStore
	codec     *TokenCodec
	hasher    *PasswordHasher
	now       func() time.Time
	dummyHash string
}

// NewService creates a local authentication service
func NewService(store UserStore, codec *TokenCodec, hasher *PasswordHasher) (*Service, error) {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}

	// Compared against when the email is unknown so both paths pay for bcrypt
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password verifier: %w", err)
	}

	return &Service{
		store:     store,
		codec:     codec,
		hasher:    hasher,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Codec returns the token codec used for minting
func (s *Service) Codec() *TokenCodec {
	return s.codec
}

// Hasher returns the password hasher
func (s *Service) Hasher() *PasswordHasher {
	return s.hasher
}

// Register creates a local account and mints its first token
func (s *Service) Register(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	user, err := s.CreateAccount(ctx, email, password, false)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.MintFor(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// CreateAccount creates a local account without minting a token
func (s *Service) CreateAccount(ctx context.Context, email, password string, isAdmin bool) (*User, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Provider:     ProviderLocal,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// AccountUpdate lists the fields to change. Nil fields are left alone.
type AccountUpdate struct {
	Email    *string
	Password *string
	IsAdmin  *bool
}

// UpdateAccount applies update to the user. A new admin flag reaches the
// user's tokens only when they next log in.
func (s *Service) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		if !ValidEmail(email) {
			return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
		}
		user.Email = email
	}
	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if update.IsAdmin != nil {
		user.IsAdmin = *update.IsAdmin
	}

	user.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateAccount) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Login checks local credentials. Every mismatch is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = NormalizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Provider != ProviderLocal || !user.HasPassword() {
		s.hasher.Verify(password, s.dummyHash)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.MintFor(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// CurrentUser re-reads the identity's user from the store
func (s *Service) CurrentUser(ctx context.Context, identity *Identity) (*User, error) {
	if identity == nil {
		return nil, ErrUserNotFound
	}
	return s.store.GetUserByID(ctx, identity.UserID)
}

// MintFor mints a token carrying the user's current admin flag
func (s *Service) MintFor(user *User) (string, time.Time, error) {
	return s.codec.Mint(user.ID, user.IsAdmin)
}
