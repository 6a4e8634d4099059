// Package middleware provides the request-processing chain shared by the
// handlers: access-token authentication, role gating, rate limiting and
// response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kindleapp/kindle-api/internal/auth"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	CtxUserID      = "user_id"      // uuid.UUID of the authenticated user
	CtxRole        = "role"         // role string from the token claim
	CtxCurrentUser = "current_user" // model.User row as loaded from the store
)

// AccessCookie is the cookie carrying the access token. It takes
// precedence over the Authorization header when both are present.
const AccessCookie = "access_token"

// JWTAuth authenticates the request via the access-token cookie or a
// Bearer header and attaches the resolved identity to the context. The
// subject must still exist in the store; the role is taken from the token
// claim, so role changes apply on the next login, not retroactively.
// All failures are a uniform 401.
func JWTAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessTokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthenticated.Error()})
			}
			u, role, err := svc.CurrentUser(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthenticated.Error()})
			}
			c.Set(CtxUserID, u.ID)
			c.Set(CtxRole, role)
			c.Set(CtxCurrentUser, u)
			return next(c)
		}
	}
}

func accessTokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
