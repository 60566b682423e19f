package sso

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/session"
)

// StateCookieName holds the anti-CSRF state between login and callback
const StateCookieName = "oauth_state"

const stateTTL = 10 * time.Minute

// Error codes sent to the frontend as ?error=
const (
	CodeAccessDenied      = "access_denied"
	CodeInvalidState      = "invalid_state"
	CodeOAuthFailed       = "oauth_failed"
	CodeProfileIncomplete = "profile_incomplete"
	CodeEmailUnverified   = "email_unverified"
	CodeAccountConflict   = "account_conflict"
	CodeServerError       = "server_error"
)

// TokenMinter mints the session token for a resolved user
type TokenMinter interface {
	MintFor(user *auth.User) (string, time.Time, error)
}

// Handlers serves the federated login endpoints for one provider
type Handlers struct {
	provider     IdentityProvider
	resolver     *Resolver
	minter       TokenMinter
	redirect     *session.RedirectSource
	secureCookie bool
	metrics      *observability.Metrics
}

// NewHandlers creates the federated login handlers. metrics may be nil.
func NewHandlers(provider IdentityProvider, resolver *Resolver, minter TokenMinter,
	redirect *session.RedirectSource, secureCookie bool, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		provider:     provider,
		resolver:     resolver,
		minter:       minter,
		redirect:     redirect,
		secureCookie: secureCookie,
		metrics:      metrics,
	}
}

// RegisterRoutes registers the login and callback routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	base := "/auth/" + h.provider.Name()
	router.HandleFunc(base, h.initiateLogin).Methods("GET")
	router.HandleFunc(base+"/callback", h.handleCallback).Methods("GET")
}

// initiateLogin handles GET /auth/google
func (h *Handlers) initiateLogin(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to generate oauth state")
		h.redirect.Fail(w, r, CodeServerError)
		return
	}

	http.SetCookie(w, h.stateCookie(state, int(stateTTL.Seconds())))
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback handles GET /auth/google/callback
func (h *Handlers) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context()).WithField("provider", h.provider.Name())

	// The state is single use whatever the outcome
	http.SetCookie(w, h.stateCookie("", -1))

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		logger.WithField("provider_error", providerErr).Info("federated login declined")
		h.fail(w, r, CodeAccessDenied)
		return
	}

	if err := checkState(r, query.Get("state")); err != nil {
		logger.WithError(err).Warn("federated login state mismatch")
		h.fail(w, r, CodeInvalidState)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		logger.WithError(err).Warn("federated code exchange failed")
		h.fail(w, r, CodeOAuthFailed)
		return
	}

	user, err := h.resolver.Resolve(r.Context(), profile)
	if err != nil {
		code := resolveErrorCode(err)
		if code == CodeServerError {
			logger.WithError(err).Error("failed to resolve federated user")
		} else {
			logger.WithError(err).Info("federated user rejected")
		}
		h.fail(w, r, code)
		return
	}

	token, expiresAt, err := h.minter.MintFor(user)
	if err != nil {
		logger.WithError(err).Error("failed to mint token")
		h.fail(w, r, CodeServerError)
		return
	}

	if err := h.redirect.Deliver(w, r, token, expiresAt); err != nil {
		logger.WithError(err).Error("failed to deliver token")
		h.fail(w, r, CodeServerError)
		return
	}

	h.metrics.RecordLogin(h.provider.Name(), "success")
	logger.WithField("user_id", user.ID).Info("federated login")
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, code string) {
	h.metrics.RecordLogin(h.provider.Name(), code)
	h.redirect.Fail(w, r, code)
}

func (h *Handlers) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// resolveErrorCode maps a Resolver error to its frontend code
func resolveErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrProfileIncomplete):
		return CodeProfileIncomplete
	case errors.Is(err, ErrEmailUnverified):
		return CodeEmailUnverified
	case errors.Is(err, ErrAccountConflict):
		return CodeAccountConflict
	default:
		return CodeServerError
	}
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func checkState(r *http.Request, state string) error {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return fmt.Errorf("%w: missing state cookie", ErrInvalidState)
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return ErrInvalidState
	}
	return nil
}
