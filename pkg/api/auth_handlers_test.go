package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/session"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{Email: "Alice@Example.com", Password: "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	identity, err := env.auth.Codec().Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, identity.UserID)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "alice@example.com", "pw")

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "duplicate", body: `{"email":"alice@example.com","password":"x"}`, status: http.StatusBadRequest, message: "User already exists"},
		{name: "duplicate other case", body: `{"email":"ALICE@example.com","password":"x"}`, status: http.StatusBadRequest, message: "User already exists"},
		{name: "bad email", body: `{"email":"alice","password":"x"}`, status: http.StatusBadRequest, message: "A valid email is required"},
		{name: "missing password", body: `{"email":"bob@example.com"}`, status: http.StatusBadRequest, message: "Password is required"},
		{name: "long password", body: `{"email":"bob@example.com","password":"` + strings.Repeat("a", 73) + `"}`, status: http.StatusBadRequest, message: "Password must be at most 72 bytes"},
		{name: "malformed json", body: `{"email":`, status: http.StatusBadRequest},
		{name: "empty body", body: ``, status: http.StatusBadRequest, message: "invalid JSON: empty body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			env.server.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeMessage(t, rec))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "alice@example.com", "pw")

	rec := env.do(t, http.MethodPost, "/auth/login", "", CredentialsRequest{Email: "alice@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "alice@example.com", "pw")

	// A federated-only account has no password
	require.NoError(t, env.store.CreateUser(context.Background(), &auth.User{
		ID:          "g1",
		Email:       "gina@example.com",
		Provider:    auth.ProviderGoogle,
		FederatedID: "sub-1",
	}))

	for _, creds := range []CredentialsRequest{
		{Email: "alice@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "pw"},
		{Email: "gina@example.com", Password: ""},
		{Email: "gina@example.com", Password: "anything"},
	} {
		rec := env.do(t, http.MethodPost, "/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, creds.Email)
		assert.Equal(t, "Invalid credentials", decodeMessage(t, rec))
	}
}

func TestCookieTransport(t *testing.T) {
	tokens, err := session.New(session.Config{Transport: session.TransportCookie, SameSite: http.SameSiteLaxMode, Domain: "example.com"})
	require.NoError(t, err)
	env := newTestEnv(t, tokens)

	rec := env.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{Email: "alice@example.com", Password: "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "example.com", cookie.Domain)
	assert.InDelta(t, 86400, cookie.MaxAge, 2)

	// The cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie.Value})
	me := httptest.NewRecorder()
	env.server.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	// Logout clears it with matching attributes
	out := env.do(t, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "Logged out successfully", decodeMessage(t, out))

	var cleared *http.Cookie
	for _, c := range out.Result().Cookies() {
		if c.Name == session.CookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
	assert.Equal(t, "example.com", cleared.Domain)
	assert.True(t, cleared.HttpOnly)
}

func TestLogout_AcceptsGetAndPost(t *testing.T) {
	env := newTestEnv(t, session.NewCookieSource(session.Config{Domain: "example.com"}))

	reg := env.do(t, http.MethodPost, "/auth/register", "", CredentialsRequest{Email: "bob@example.com", Password: "pw"})
	require.Equal(t, http.StatusCreated, reg.Code)
	assert.Contains(t, reg.Header().Get("Set-Cookie"), "SameSite=Lax")

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			rec := env.do(t, method, "/auth/logout", "", nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Logged out successfully", decodeMessage(t, rec))
			setCookie := rec.Header().Get("Set-Cookie")
			assert.Contains(t, setCookie, session.CookieName+"=;")
			assert.Contains(t, setCookie, "SameSite=Lax")
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, nil)
	token, user := env.registerUser(t, "alice@example.com", "pw")

	rec := env.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.User["id"])
	assert.Equal(t, "local", resp.User["provider"])
	assert.NotContains(t, resp.User, "PasswordHash")

	require.NoError(t, env.store.DeleteUser(context.Background(), user.ID))
	rec = env.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeMessage(t, rec))
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.registerUser(t, "alice@example.com", "pw")

	rec := env.do(t, http.MethodGet, "/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.JSONEq(t, `[]`, string(resp["bookings"]))
	assert.Contains(t, string(resp["user"]), "alice@example.com")
}
