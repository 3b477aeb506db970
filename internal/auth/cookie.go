package auth

import (
	"net/http"
	"time"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookie stores token in an HTTP-only, same-site-strict cookie.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		Expires:  time.Now().Add(opts.MaxAge),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func tokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
