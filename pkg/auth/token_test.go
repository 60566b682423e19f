package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenCodec_RequiresSecret(t *testing.T) {
	_, err := NewTokenCodec(nil)
	assert.Error(t, err)

	c, err := NewTokenCodec(testSecret)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	c, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	cases := []struct {
		id      string
		isAdmin bool
	}{
		{"3f1c2f3e-2b5a-4d7e-9a1c-1b2c3d4e5f60", false},
		{"3f1c2f3e-2b5a-4d7e-9a1c-1b2c3d4e5f60", true},
		{"user-1", true},
		{"ünïcødé", false},
	}

	for _, tc := range cases {
		token, expiresAt, err := c.Mint(tc.id, tc.isAdmin)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, 2*time.Second)

		identity, err := c.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, tc.id, identity.UserID)
		assert.Equal(t, tc.isAdmin, identity.IsAdmin)
	}
}

func TestTokenCodec_MintRejectsEmptyID(t *testing.T) {
	c, _ := NewTokenCodec(testSecret)
	_, _, err := c.Mint("", false)
	assert.ErrorIs(t, err, ErrTokenGeneration)
}

func TestTokenCodec_Expiry(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	minter, _ := NewTokenCodec(testSecret, WithClock(fixedClock(issued)))

	token, expiresAt, err := minter.Mint("user-1", false)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), expiresAt)

	t.Run("valid just before expiry", func(t *testing.T) {
		v, _ := NewTokenCodec(testSecret, WithClock(fixedClock(expiresAt.Add(-time.Second))))
		_, err := v.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("expired at exactly exp", func(t *testing.T) {
		v, _ := NewTokenCodec(testSecret, WithClock(fixedClock(expiresAt)))
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expired long after", func(t *testing.T) {
		v, _ := NewTokenCodec(testSecret, WithClock(fixedClock(expiresAt.Add(48*time.Hour))))
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestTokenCodec_Tampered(t *testing.T) {
	c, _ := NewTokenCodec(testSecret)
	token, _, err := c.Mint("user-1", false)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("payload swapped to admin", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"id":"user-1","isAdmin":true,"exp":4102444800}`))
		forged := parts[0] + "." + payload + "." + parts[2]

		identity, err := c.Verify(forged)
		assert.ErrorIs(t, err, ErrTokenMalformed)
		assert.Nil(t, identity)
	})

	t.Run("signature from another secret", func(t *testing.T) {
		other, _ := NewTokenCodec([]byte("another-secret-another-secret-00"))
		foreign, _, err := other.Mint("user-1", true)
		require.NoError(t, err)

		_, err = c.Verify(foreign)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b.c", token + "x"} {
			_, err := c.Verify(raw)
			assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
		}
	})
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := NewTokenCodec(testSecret)

	claims := &Claims{
		ID:      "user-1",
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(none)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = c.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenCodec_RequiresClaims(t *testing.T) {
	c, _ := NewTokenCodec(testSecret)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{ID: "user-1"}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = c.Verify(noExp)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = c.Verify(noID)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
