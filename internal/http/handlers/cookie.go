package handlers

import (
	"net/http"
	"time"

	"task_api/internal/http/middleware"
	"task_api/internal/service"
)

// CookiePolicy decides the attributes of the session cookie. Clearing uses
// the same attributes as setting so browsers match and drop it.
type CookiePolicy struct {
	// Secure marks the cookie Secure with SameSite=None, for a frontend on
	// another origin over HTTPS. Otherwise SameSite=Lax.
	Secure bool
}

func (p CookiePolicy) cookie(value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if p.Secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (p CookiePolicy) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, p.cookie(token, int(service.SessionTTL/time.Second)))
}

func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie("", -1))
}
