package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/middleware"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCredentials},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized, middleware.MsgInvalidToken},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, middleware.MsgNotAdmin},
		{"duplicate account", fmt.Errorf("create: %w", auth.ErrDuplicateAccount), http.StatusBadRequest, msgUserExists},
		{"invalid input", auth.ErrInvalidInput, http.StatusBadRequest, msgInvalidInput},
		{"password too long", auth.ErrPasswordTooLong, http.StatusBadRequest, msgPasswordTooLong},
		{"user not found", auth.ErrUserNotFound, http.StatusNotFound, msgUserNotFound},
		{"already booked", fmt.Errorf("insert booking: %w", storage.ErrAlreadyBooked), http.StatusBadRequest, msgAlreadyBooked},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, httputil.InternalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeMessage(t, rec))
		})
	}
}
