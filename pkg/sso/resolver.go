package sso

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/eventbook/pkg/auth"
)

// MergePolicy decides what happens when a federated email matches a local account
type MergePolicy string

const (
	// MergeLink attaches the federated subject to the local account and keeps its password
	MergeLink MergePolicy = "merge"
	// MergeReject refuses the federated login with ErrAccountConflict
	MergeReject MergePolicy = "reject"
)

// ParseMergePolicy parses a policy name. Empty means MergeLink.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case "", MergeLink:
		return MergeLink, nil
	case MergeReject:
		return MergeReject, nil
	default:
		return "", fmt.Errorf("invalid merge policy: %q", s)
	}
}

// Resolver maps a provider profile onto a user in the credential store
type Resolver struct {
	store  auth.UserStore
	policy MergePolicy
	now    func() time.Time
}

// NewResolver creates a resolver
func NewResolver(store auth.UserStore, policy MergePolicy) *Resolver {
	if policy == "" {
		policy = MergeLink
	}
	return &Resolver{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Resolve finds, creates or links the user for profile
func (r *Resolver) Resolve(ctx context.Context, profile *Profile) (*auth.User, error) {
	if profile == nil || profile.Subject == "" {
		return nil, ErrProfileIncomplete
	}
	email := auth.NormalizeEmail(profile.Email)
	if email == "" {
		return nil, ErrProfileIncomplete
	}
	if !profile.EmailVerified {
		return nil, ErrEmailUnverified
	}

	user, err := r.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		user, err = r.create(ctx, email, profile)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, auth.ErrDuplicateAccount) {
			return nil, err
		}
		// Lost a race with a concurrent first login; use the winner's row
		user, err = r.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return r.link(ctx, user, profile)
}

func (r *Resolver) create(ctx context.Context, email string, profile *Profile) (*auth.User, error) {
	now := r.now()
	user := &auth.User{
		ID:          uuid.NewString(),
		Email:       email,
		Provider:    auth.ProviderGoogle,
		FederatedID: profile.Subject,
		Name:        profile.Name,
		AvatarURL:   profile.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, auth.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// link reconciles an existing user with the profile
func (r *Resolver) link(ctx context.Context, user *auth.User, profile *Profile) (*auth.User, error) {
	if user.FederatedID != "" && user.FederatedID != profile.Subject {
		return nil, ErrAccountConflict
	}

	changed := false
	if user.FederatedID == "" {
		if user.Provider != auth.ProviderGoogle && r.policy == MergeReject {
			return nil, ErrAccountConflict
		}
		user.FederatedID = profile.Subject
		changed = true
	}

	// The provider's display fields win when it supplies them
	if profile.Name != "" && user.Name != profile.Name {
		user.Name = profile.Name
		changed = true
	}
	if profile.Picture != "" && user.AvatarURL != profile.Picture {
		user.AvatarURL = profile.Picture
		changed = true
	}

	if !changed {
		return user, nil
	}

	user.UpdatedAt = r.now()
	if err := r.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
