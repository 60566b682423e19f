package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/middleware"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// register handles POST /auth/register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, token, expiresAt, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.RecordLogin(string(auth.ProviderLocal), "register_failed")
		writeServiceError(w, r, err)
		return
	}

	s.metrics.RecordLogin(string(auth.ProviderLocal), "registered")
	observability.FromContext(r.Context()).WithField("user_id", user.ID).Info("user registered")
	s.deliver(w, r, http.StatusCreated, "User registered successfully", user, token, expiresAt)
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, token, expiresAt, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		outcome := "error"
		if errors.Is(err, auth.ErrInvalidCredentials) {
			outcome = "invalid_credentials"
		}
		s.metrics.RecordLogin(string(auth.ProviderLocal), outcome)
		writeServiceError(w, r, err)
		return
	}

	s.metrics.RecordLogin(string(auth.ProviderLocal), "success")
	s.deliver(w, r, http.StatusOK, "Login successful", user, token, expiresAt)
}

// deliver hands the token to the transport and writes the auth response.
// The token is always in the body; cookie transports also set the cookie.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request, status int, message string,
	user *auth.User, token string, expiresAt time.Time) {
	if err := s.tokens.Deliver(w, r, token, expiresAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	_ = httputil.WriteJSON(w, status, AuthResponse{
		Message: message,
		Token:   token,
		User:    user.Public(),
	})
}

// logout handles GET/POST /auth/logout. Tokens are stateless, so this only
// clears the cookie; header-based clients must discard their copy.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.tokens.Clear(w)
	httputil.WriteMessage(w, "Logged out successfully")
}

// me handles GET /auth/me
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// The token outlived its account
			s.tokens.Clear(w)
		}
		writeServiceError(w, r, err)
		return
	}

	_ = httputil.WriteSuccess(w, UserResponse{User: user})
}

// profile handles GET /user
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	bookings, err := s.store.ListUserBookings(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*storage.Booking{}
	}

	_ = httputil.WriteSuccess(w, ProfileResponse{User: user, Bookings: bookings})
}
