package sso

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/storage/memory"
)

func verifiedProfile() *Profile {
	return &Profile{
		Subject:       "google-sub-1",
		Email:         "Alice@Example.com",
		EmailVerified: true,
		Name:          "Alice",
		Picture:       "https://example.com/alice.png",
	}
}

func TestParseMergePolicy(t *testing.T) {
	p, err := ParseMergePolicy("")
	require.NoError(t, err)
	assert.Equal(t, MergeLink, p)

	p, err = ParseMergePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, MergeReject, p)

	_, err = ParseMergePolicy("overwrite")
	assert.Error(t, err)
}

func TestResolve_ProfileChecks(t *testing.T) {
	r := NewResolver(memory.New(), MergeLink)
	ctx := context.Background()

	_, err := r.Resolve(ctx, &Profile{Subject: "s", EmailVerified: true})
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	_, err = r.Resolve(ctx, &Profile{Email: "a@example.com", EmailVerified: true})
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	_, err = r.Resolve(ctx, &Profile{Subject: "s", Email: "a@example.com", EmailVerified: false})
	assert.ErrorIs(t, err, ErrEmailUnverified)

	_, err = r.Resolve(ctx, nil)
	assert.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestResolve_CreatesFederatedUser(t *testing.T) {
	store := memory.New()
	r := NewResolver(store, MergeLink)
	ctx := context.Background()

	user, err := r.Resolve(ctx, verifiedProfile())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, auth.ProviderGoogle, user.Provider)
	assert.Equal(t, "google-sub-1", user.FederatedID)
	assert.False(t, user.HasPassword())
	assert.False(t, user.IsAdmin)

	again, err := r.Resolve(ctx, verifiedProfile())
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "second login reuses the account")
}

func TestResolve_RefreshesGoogleDisplayFields(t *testing.T) {
	store := memory.New()
	r := NewResolver(store, MergeLink)
	ctx := context.Background()

	_, err := r.Resolve(ctx, verifiedProfile())
	require.NoError(t, err)

	p := verifiedProfile()
	p.Name = "Alice B."
	user, err := r.Resolve(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", user.Name)

	stored, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", stored.Name)
}

func TestResolve_MergesLocalAccount(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &auth.User{
		ID:           "local-1",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Provider:     auth.ProviderLocal,
		Name:         "Alice Local",
	}))

	user, err := NewResolver(store, MergeLink).Resolve(ctx, verifiedProfile())
	require.NoError(t, err)

	assert.Equal(t, "local-1", user.ID)
	assert.Equal(t, auth.ProviderLocal, user.Provider, "provider is kept")
	assert.True(t, user.HasPassword(), "password is kept")
	assert.Equal(t, "google-sub-1", user.FederatedID)
	assert.Equal(t, "Alice", user.Name, "profile name replaces the local one")
	assert.Equal(t, "https://example.com/alice.png", user.AvatarURL, "blank avatar is filled")

	stored, err := store.GetUserByID(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "google-sub-1", stored.FederatedID)
}

func TestResolve_MergeKeepsFieldsTheProfileOmits(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &auth.User{
		ID:           "local-1",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Provider:     auth.ProviderLocal,
		Name:         "Alice Local",
		AvatarURL:    "https://example.com/old.png",
	}))

	p := verifiedProfile()
	p.Name = ""
	p.Picture = ""

	user, err := NewResolver(store, MergeLink).Resolve(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Alice Local", user.Name)
	assert.Equal(t, "https://example.com/old.png", user.AvatarURL)
}

func TestResolve_RejectPolicy(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &auth.User{
		ID:           "local-1",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Provider:     auth.ProviderLocal,
	}))

	_, err := NewResolver(store, MergeReject).Resolve(ctx, verifiedProfile())
	assert.ErrorIs(t, err, ErrAccountConflict)

	stored, err := store.GetUserByID(ctx, "local-1")
	require.NoError(t, err)
	assert.Empty(t, stored.FederatedID)
}

func TestResolve_DifferentSubjectConflicts(t *testing.T) {
	store := memory.New()
	r := NewResolver(store, MergeLink)
	ctx := context.Background()

	_, err := r.Resolve(ctx, verifiedProfile())
	require.NoError(t, err)

	p := verifiedProfile()
	p.Subject = "google-sub-2"
	_, err = r.Resolve(ctx, p)
	assert.ErrorIs(t, err, ErrAccountConflict)
}

func TestResolve_ConcurrentFirstLogin(t *testing.T) {
	store := memory.New()
	r := NewResolver(store, MergeLink)
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := r.Resolve(ctx, verifiedProfile())
			errs[i] = err
			if user != nil {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

// failingStore breaks lookups to exercise the server_error path
type failingStore struct {
	auth.UserStore
}

func (failingStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, errors.New("connection refused")
}

func TestResolve_StoreFailure(t *testing.T) {
	_, err := NewResolver(failingStore{}, MergeLink).Resolve(context.Background(), verifiedProfile())
	require.Error(t, err)
	assert.Equal(t, CodeServerError, resolveErrorCode(err))
}
