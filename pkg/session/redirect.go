package session

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RedirectSource completes a browser-driven login by redirecting to the
// frontend with the token in the query string. The wrapped source still
// runs first, so cookie deployments also get the cookie.
type RedirectSource struct {
	inner       TokenSource
	frontendURL string
}

// NewRedirect wraps inner for the federated callback
func NewRedirect(inner TokenSource, frontendURL string) *RedirectSource {
	if inner == nil {
		inner = BodySource{}
	}
	return &RedirectSource{
		inner:       inner,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Extract delegates to the wrapped source
func (s *RedirectSource) Extract(r *http.Request) (string, bool) {
	return s.inner.Extract(r)
}

// Deliver redirects to ${frontend}/auth/callback?token=...
func (s *RedirectSource) Deliver(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) error {
	if err := s.inner.Deliver(w, r, token, expiresAt); err != nil {
		return err
	}

	s.redirect(w, r, "/auth/callback", url.Values{"token": {token}})
	return nil
}

// Clear delegates to the wrapped source
func (s *RedirectSource) Clear(w http.ResponseWriter) {
	s.inner.Clear(w)
}

// Fail redirects to ${frontend}/login?error=code
func (s *RedirectSource) Fail(w http.ResponseWriter, r *http.Request, code string) {
	s.redirect(w, r, "/login", url.Values{"error": {code}})
}

func (s *RedirectSource) redirect(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	// The token must not linger in caches or leak via Referer
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, s.frontendURL+path+"?"+query.Encode(), http.StatusFound)
}
