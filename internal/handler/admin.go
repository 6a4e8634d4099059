package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kindleapp/kindle-api/internal/middleware"
	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/queue"
	"github.com/kindleapp/kindle-api/internal/repository"
)

// AdminHandler serves the /admin endpoints. The routes are mounted behind
// RequireRole(admin); promote/demote are the only role transitions the
// system has.
type AdminHandler struct {
	Users  *repository.UserRepo
	Events *queue.Publisher
}

func NewAdminHandler(users *repository.UserRepo, events *queue.Publisher) *AdminHandler {
	return &AdminHandler{Users: users, Events: events}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profiles(users))
}

// ListModerators handles GET /admin/users/moderators.
func (h *AdminHandler) ListModerators(c echo.Context) error {
	return h.listByRole(c, model.RoleModerator)
}

// ListAdmins handles GET /admin/users/admins.
func (h *AdminHandler) ListAdmins(c echo.Context) error {
	return h.listByRole(c, model.RoleAdmin)
}

func (h *AdminHandler) listByRole(c echo.Context, role string) error {
	users, err := h.Users.ListByRole(c.Request().Context(), role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profiles(users))
}

// Promote handles POST /admin/users/:id/promote: user -> moderator.
func (h *AdminHandler) Promote(c echo.Context) error {
	return h.changeRole(c, model.RoleUser, model.RoleModerator)
}

// Demote handles POST /admin/users/:id/demote: moderator -> user.
func (h *AdminHandler) Demote(c echo.Context) error {
	return h.changeRole(c, model.RoleModerator, model.RoleUser)
}

// changeRole applies an admin role transition. Admins cannot change their
// own role, and the target must currently hold the expected role. The new
// role takes effect for API calls only when the target logs in again.
func (h *AdminHandler) changeRole(c echo.Context, from, to string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	actorID, _ := c.Get(middleware.CtxUserID).(uuid.UUID)
	if id == actorID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change your own role"})
	}

	ctx := c.Request().Context()
	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if target.Role != from {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user role must be " + from})
	}

	if err := h.Users.UpdateRole(ctx, id, to); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role update failed"})
	}
	if h.Events != nil {
		_ = h.Events.Publish(ctx, queue.NewUserEvent(queue.EventUserRoleChanged, id, target.Email, to))
	}
	target.Role = to
	return c.JSON(http.StatusOK, model.NewProfile(target, to))
}

func profiles(users []model.User) []model.Profile {
	out := make([]model.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, model.NewProfile(u, u.Role))
	}
	return out
}
