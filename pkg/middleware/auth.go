package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/contextkeys"
	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/observability"
)

// Client-facing rejection messages
const (
	MsgAuthRequired = "authentication required"
	MsgInvalidToken = "invalid or expired token"
	MsgNotAdmin     = "You are not authorized to perform this action"
)

// TokenVerifier checks a raw token and returns the identity it carries
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// TokenExtractor pulls the raw token off a request
type TokenExtractor interface {
	Extract(r *http.Request) (string, bool)
}

// AuthMiddleware is the auth gate. It verifies the request token and attaches
// the identity to the context. It never touches the store.
type AuthMiddleware struct {
	verifier  TokenVerifier
	extractor TokenExtractor
	metrics   *observability.Metrics
}

// NewAuthMiddleware creates a new authentication middleware. metrics may be nil.
func NewAuthMiddleware(verifier TokenVerifier, extractor TokenExtractor, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		extractor: extractor,
		metrics:   metrics,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.extractor.Extract(r)
		if !ok {
			m.metrics.RecordAuthRejection("auth", "missing")
			httputil.WriteUnauthorized(w, MsgAuthRequired)
			return
		}

		identity, err := m.verifier.Verify(token)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			m.metrics.RecordAuthRejection("auth", reason)
			observability.FromContext(r.Context()).WithError(err).Debug("token rejected")
			httputil.WriteUnauthorized(w, MsgInvalidToken)
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), identity)
		ctx = contextkeys.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity attached by the auth gate
func IdentityFromContext(ctx context.Context) *auth.Identity {
	identity, ok := ctx.Value(contextkeys.AuthKey).(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetIdentity extracts the identity from the request
func GetIdentity(r *http.Request) *auth.Identity {
	return IdentityFromContext(r.Context())
}

// RequireAdmin is the admin gate. It must run after the auth gate and trusts
// the admin flag in the token; no signature check or store read happens here.
func RequireAdmin(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				metrics.RecordAuthRejection("admin", "missing")
				httputil.WriteUnauthorized(w, MsgAuthRequired)
				return
			}

			if !identity.IsAdmin {
				metrics.RecordAuthRejection("admin", "forbidden")
				httputil.WriteForbidden(w, MsgNotAdmin)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
