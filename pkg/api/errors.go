package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/middleware"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// Client-facing messages
const (
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists"
	msgInvalidInput       = "A valid email is required"
	msgPasswordRequired   = "Password is required"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgUserNotFound       = "User not found"
	msgEventNotFound      = "Event not found"
	msgBookingNotFound    = "Booking not found"
	msgAlreadyBooked      = "You already booked this event"
)

// writeServiceError maps service and store errors onto status codes. Anything
// unrecognised is logged with detail and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, msgInvalidCredentials)
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenMalformed):
		httputil.WriteUnauthorized(w, middleware.MsgInvalidToken)
	case errors.Is(err, auth.ErrForbidden):
		httputil.WriteForbidden(w, middleware.MsgNotAdmin)
	case errors.Is(err, auth.ErrDuplicateAccount):
		httputil.WriteBadRequest(w, msgUserExists)
	case errors.Is(err, auth.ErrInvalidInput):
		httputil.WriteBadRequest(w, msgInvalidInput)
	case errors.Is(err, auth.ErrPasswordRequired):
		httputil.WriteBadRequest(w, msgPasswordRequired)
	case errors.Is(err, auth.ErrPasswordTooLong):
		httputil.WriteBadRequest(w, msgPasswordTooLong)
	case errors.Is(err, auth.ErrUserNotFound):
		httputil.WriteNotFound(w, msgUserNotFound)
	case errors.Is(err, storage.ErrAlreadyBooked):
		httputil.WriteBadRequest(w, msgAlreadyBooked)
	default:
		observability.FromContext(r.Context()).
			WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
		httputil.WriteInternalError(w)
	}
}
