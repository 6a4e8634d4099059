package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/config"
	"github.com/kindleapp/kindle-api/internal/middleware"
	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/queue"
	"github.com/kindleapp/kindle-api/internal/repository"
)

// UserHandler serves profile CRUD and the photo / social-link
// sub-resources. Mutations are gated by the permission evaluator using
// the profile owner as the target; existence is checked first, so an
// unknown id is a 404 even when the caller would lack permission.
type UserHandler struct {
	Svc    *auth.Service
	Users  *repository.UserRepo
	Photos *repository.PhotoRepo
	Links  *repository.SocialLinkRepo
	Events *queue.Publisher
	Cache  config.CacheConfig
	RDB    *redis.Client
}

func NewUserHandler(svc *auth.Service, users *repository.UserRepo, photos *repository.PhotoRepo,
	links *repository.SocialLinkRepo, events *queue.Publisher, cache config.CacheConfig, rdb *redis.Client) *UserHandler {
	return &UserHandler{Svc: svc, Users: users, Photos: photos, Links: links, Events: events, Cache: cache, RDB: rdb}
}

type updateUserReq struct {
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	DateOfBirth *string `json:"date_of_birth"`
	Bio         *string `json:"bio"`
	Gender      *string `json:"gender"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
}

// GetUser handles GET /users/:id (public, cached).
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, model.NewProfile(u, u.Role))
}

// UpdateUser handles PATCH /users/:id. Only fields present in the body
// are applied; an empty update is a 400.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	errs := fieldErrors{}
	upd := model.UserUpdate{}
	if req.Email != nil {
		v := checkEmail(errs, *req.Email)
		upd.Email = &v
	}
	if req.Name != nil {
		v := checkShortStr(errs, "name", *req.Name)
		upd.Name = &v
	}
	if req.Surname != nil {
		v := checkShortStr(errs, "surname", *req.Surname)
		upd.Surname = &v
	}
	if req.DateOfBirth != nil {
		v := checkDateOfBirth(errs, *req.DateOfBirth)
		upd.DateOfBirth = &v
	}
	if req.Bio != nil {
		v := checkBio(errs, *req.Bio)
		upd.Bio = &v
	}
	if req.Gender != nil {
		v := checkGender(errs, *req.Gender)
		upd.Gender = &v
	}
	if req.Country != nil {
		v := checkShortStr(errs, "country", *req.Country)
		upd.Country = &v
	}
	if req.City != nil {
		v := checkShortStr(errs, "city", *req.City)
		upd.City = &v
	}
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}
	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no data provided for update"})
	}

	ctx := c.Request().Context()
	if err := h.Users.UpdateProfile(ctx, target.ID, upd); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.ErrDuplicateEmail.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	updated, err := h.Users.GetByID(ctx, target.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	middleware.InvalidateCache(h.Cache, h.RDB, c, "/users/"+target.ID.String())
	return c.JSON(http.StatusOK, model.NewProfile(updated, updated.Role))
}

// DeleteUser handles DELETE /users/:id: ordered cascade over photos,
// links, refresh tokens and the user row in one transaction.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanDelete(actorRole, actorID, target.ID, target.Role) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not allowed to delete this account"})
	}

	if err := h.Svc.DeleteAccount(c.Request().Context(), target.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	if h.Events != nil {
		_ = h.Events.Publish(c.Request().Context(),
			queue.NewUserEvent(queue.EventUserDeleted, target.ID, target.Email, target.Role))
	}
	middleware.InvalidateCache(h.Cache, h.RDB, c, "/users/"+target.ID.String())
	return c.NoContent(http.StatusNoContent)
}

// loadTarget parses :id, loads the target user and pulls the actor's
// identity from the context. On failure it writes the response itself and
// reports ok=false; existence failures (404) surface before any
// permission decision.
func (h *UserHandler) loadTarget(c echo.Context) (target model.User, actorID uuid.UUID, actorRole string, ok bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
		return
	}
	target, err = h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.User{}, uuid.Nil, "", false
	}
	actorID, idOK := c.Get(middleware.CtxUserID).(uuid.UUID)
	if !idOK {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthenticated.Error()})
		return model.User{}, uuid.Nil, "", false
	}
	actorRole, _ = c.Get(middleware.CtxRole).(string)
	return target, actorID, actorRole, true
}
