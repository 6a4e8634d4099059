package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/middleware"
)

// RefreshCookie carries the refresh token for /auth/refresh and
// /auth/revoke. The access cookie name lives in the middleware package
// because the auth middleware reads it.
const RefreshCookie = "refresh_token"

func buildCookie(name, value, domain string, secure bool, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if domain != "" {
		ck.Domain = domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func deletionCookie(name, domain string, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if domain != "" {
		ck.Domain = domain
	}
	return ck
}

// setAuthCookies attaches both tokens as HttpOnly cookies with max-age
// equal to each token's TTL.
func (h *AuthHandler) setAuthCookies(c echo.Context, pair auth.TokenPair) {
	codec := h.Svc.Codec()
	c.SetCookie(buildCookie(middleware.AccessCookie, pair.AccessToken, h.CookieDomain, h.CookieSecure, codec.AccessTTL()))
	c.SetCookie(buildCookie(RefreshCookie, pair.RefreshToken, h.CookieDomain, h.CookieSecure, codec.RefreshTTL()))
}

// clearAuthCookies expires both cookies.
func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(deletionCookie(middleware.AccessCookie, h.CookieDomain, h.CookieSecure))
	c.SetCookie(deletionCookie(RefreshCookie, h.CookieDomain, h.CookieSecure))
}
