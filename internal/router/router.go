// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kindleapp/kindle-api/internal/config"
	"github.com/kindleapp/kindle-api/internal/handler"
	"github.com/kindleapp/kindle-api/internal/middleware"
	"github.com/kindleapp/kindle-api/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Admin *handler.AdminHandler

	RDB       *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// Register mounts the full API surface on e.
//
// Route groups:
//   - /auth: register/login/refresh/revoke are public and rate limited;
//     logout and me require an access token.
//   - /users: profile reads are public (and cached when Redis is up),
//     every mutation requires an access token. Permission decisions
//     happen inside the handlers because they depend on the target row.
//   - /admin: requires an access token carrying the admin role.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	jwt := middleware.JWTAuth(d.Auth.Svc)
	limited := middleware.RateLimit(d.RateLimit, d.RDB)
	cached := middleware.CacheGET(d.Cache, d.RDB)

	ag := e.Group("/auth")
	ag.POST("/register", d.Auth.Register, limited)
	ag.POST("/login", d.Auth.Login, limited)
	ag.POST("/refresh", d.Auth.Refresh, limited)
	ag.POST("/revoke", d.Auth.Revoke, limited)
	ag.POST("/logout", d.Auth.Logout, jwt)
	ag.GET("/me", d.Auth.Me, jwt)

	ug := e.Group("/users")
	ug.GET("/:id", d.Users.GetUser, cached)
	ug.PATCH("/:id", d.Users.UpdateUser, jwt)
	ug.DELETE("/:id", d.Users.DeleteUser, jwt)

	ug.GET("/:id/photos", d.Users.ListPhotos, cached)
	ug.POST("/:id/photos", d.Users.CreatePhoto, jwt)
	ug.PATCH("/:id/photos/:photo_id", d.Users.UpdatePhoto, jwt)
	ug.DELETE("/:id/photos/:photo_id", d.Users.DeletePhoto, jwt)

	ug.GET("/:id/social-links", d.Users.ListSocialLinks, cached)
	ug.POST("/:id/social-links", d.Users.CreateSocialLink, jwt)
	ug.PATCH("/:id/social-links/:link_id", d.Users.UpdateSocialLink, jwt)
	ug.DELETE("/:id/social-links/:link_id", d.Users.DeleteSocialLink, jwt)

	adm := e.Group("/admin", jwt, middleware.RequireRole(model.RoleAdmin))
	adm.GET("/users", d.Admin.ListUsers)
	adm.GET("/users/moderators", d.Admin.ListModerators)
	adm.GET("/users/admins", d.Admin.ListAdmins)
	adm.POST("/users/:id/promote", d.Admin.Promote)
	adm.POST("/users/:id/demote", d.Admin.Demote)
}
