package session

import (
	"net/http"
	"time"
)

// CookieSource stores the token in an HttpOnly cookie
type CookieSource struct {
	domain   string
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

// NewCookieSource creates a cookie transport. An unset or default SameSite
// becomes Lax. SameSite=None forces Secure because browsers drop insecure
// SameSite=None cookies.
func NewCookieSource(cfg Config) *CookieSource {
	sameSite := cfg.SameSite
	if sameSite == 0 || sameSite == http.SameSiteDefaultMode {
		sameSite = http.SameSiteLaxMode
	}

	return &CookieSource{
		domain:   cfg.Domain,
		secure:   cfg.Secure || sameSite == http.SameSiteNoneMode,
		sameSite: sameSite,
		now:      time.Now,
	}
}

func (c *CookieSource) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}

// Extract reads the header or cookie
func (c *CookieSource) Extract(r *http.Request) (string, bool) {
	return ExtractToken(r)
}

// Deliver sets the token cookie to expire together with the token
func (c *CookieSource) Deliver(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) error {
	cookie := c.cookie(token)
	cookie.Expires = expiresAt
	if maxAge := int(expiresAt.Sub(c.now()).Seconds()); maxAge > 0 {
		cookie.MaxAge = maxAge
	} else {
		cookie.MaxAge = -1
	}

	http.SetCookie(w, cookie)
	return nil
}

// Clear expires the cookie with the attributes it was set with
func (c *CookieSource) Clear(w http.ResponseWriter) {
	cookie := c.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}
