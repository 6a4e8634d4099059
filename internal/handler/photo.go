package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/middleware"
	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/repository"
)

// Photo sub-resource. Mutations are gated by ownership of the parent
// user: the row must belong to the :id user in the URL, and a photo
// hanging off someone else's profile is indistinguishable from a
// missing one.

type photoCreateReq struct {
	URL string `json:"url"`
}

type photoUpdateReq struct {
	URL *string `json:"url"`
}

// ListPhotos handles GET /users/:id/photos (public).
func (h *UserHandler) ListPhotos(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	photos, err := h.Photos.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, photos)
}

// CreatePhoto handles POST /users/:id/photos.
func (h *UserHandler) CreatePhoto(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}

	var req photoCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	errs := fieldErrors{}
	url := checkLongStr(errs, "url", req.URL)
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	photo, err := h.Photos.Create(c.Request().Context(), target.ID, url)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create photo failed"})
	}
	h.invalidatePhotoList(c, target.ID)
	return c.JSON(http.StatusCreated, photo)
}

// UpdatePhoto handles PATCH /users/:id/photos/:photo_id.
func (h *UserHandler) UpdatePhoto(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}
	photo, ok := h.ownPhoto(c, target.ID)
	if !ok {
		return nil
	}

	var req photoUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.URL == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no data provided for update"})
	}
	errs := fieldErrors{}
	url := checkLongStr(errs, "url", *req.URL)
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	updated, err := h.Photos.UpdateURL(c.Request().Context(), photo.ID, url)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update photo failed"})
	}
	h.invalidatePhotoList(c, target.ID)
	return c.JSON(http.StatusOK, updated)
}

// DeletePhoto handles DELETE /users/:id/photos/:photo_id.
func (h *UserHandler) DeletePhoto(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}
	photo, ok := h.ownPhoto(c, target.ID)
	if !ok {
		return nil
	}

	if err := h.Photos.Delete(c.Request().Context(), photo.ID); err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete photo failed"})
	}
	h.invalidatePhotoList(c, target.ID)
	return c.NoContent(http.StatusNoContent)
}

// ownPhoto parses :photo_id and loads the row, requiring it to belong to
// the profile owner from the URL. A photo under someone else's profile
// reports not-found, never the mismatch. Writes its own response and
// reports ok=false on failure.
func (h *UserHandler) ownPhoto(c echo.Context, ownerID uuid.UUID) (model.UserPhoto, bool) {
	photoID, err := strconv.ParseInt(c.Param("photo_id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid photo id"})
		return model.UserPhoto{}, false
	}
	photo, err := h.Photos.GetByID(c.Request().Context(), photoID)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.UserPhoto{}, false
	}
	if photo.UserID != ownerID {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		return model.UserPhoto{}, false
	}
	return photo, true
}

func (h *UserHandler) invalidatePhotoList(c echo.Context, ownerID uuid.UUID) {
	middleware.InvalidateCache(h.Cache, h.RDB, c, "/users/"+ownerID.String()+"/photos")
}
