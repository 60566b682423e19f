// Package session moves identity tokens between the server and clients.
//
// A TokenSource is chosen once from configuration. Extraction is identical
// for every source: an "Authorization: Bearer" header wins, otherwise the
// token cookie is read. The two are never merged.
package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie that carries the identity token
const CookieName = "token"

// Transport modes
const (
	TransportCookie = "cookie"
	TransportBody   = "body"
)

// TokenSource extracts tokens from requests and delivers freshly minted ones
type TokenSource interface {
	// Extract returns the raw token carried by r
	Extract(r *http.Request) (string, bool)
	// Deliver hands a minted token to the client
	Deliver(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) error
	// Clear tells the client to discard its token
	Clear(w http.ResponseWriter)
}

// Config selects and parameterizes the transport
type Config struct {
	Transport string
	Domain    string
	Secure    bool
	SameSite  http.SameSite
}

// New builds the configured TokenSource
func New(cfg Config) (TokenSource, error) {
	switch strings.ToLower(cfg.Transport) {
	case "", TransportCookie:
		return NewCookieSource(cfg), nil
	case TransportBody:
		return BodySource{}, nil
	default:
		return nil, fmt.Errorf("unknown token transport: %q", cfg.Transport)
	}
}

// ParseSameSite maps lax, strict and none to http.SameSite
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("invalid SameSite value: %q", s)
	}
}

// ExtractToken reads a bearer header, falling back to the token cookie.
// A non-Bearer Authorization header is ignored.
func ExtractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token, true
			}
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// BodySource leaves delivery to the handler's JSON body
type BodySource struct{}

// Extract reads the header or cookie
func (BodySource) Extract(r *http.Request) (string, bool) {
	return ExtractToken(r)
}

// Deliver is a no-op
func (BodySource) Deliver(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) error {
	return nil
}

// Clear is a no-op
func (BodySource) Clear(w http.ResponseWriter) {}
