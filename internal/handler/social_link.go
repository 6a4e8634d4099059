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

// Social-link sub-resource, same gating as photos: the row must belong
// to the :id user in the URL, and a link under someone else's profile
// is indistinguishable from a missing one.

type linkCreateReq struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type linkUpdateReq struct {
	Name *string `json:"name"`
	Link *string `json:"link"`
}

// ListSocialLinks handles GET /users/:id/social-links (public).
func (h *UserHandler) ListSocialLinks(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	links, err := h.Links.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, links)
}

// CreateSocialLink handles POST /users/:id/social-links.
func (h *UserHandler) CreateSocialLink(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}

	var req linkCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	errs := fieldErrors{}
	name := checkShortStr(errs, "name", req.Name)
	link := checkLongStr(errs, "link", req.Link)
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	created, err := h.Links.Create(c.Request().Context(), target.ID, name, link)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create link failed"})
	}
	h.invalidateLinkList(c, target.ID)
	return c.JSON(http.StatusCreated, created)
}

// UpdateSocialLink handles PATCH /users/:id/social-links/:link_id.
func (h *UserHandler) UpdateSocialLink(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}
	link, ok := h.ownLink(c, target.ID)
	if !ok {
		return nil
	}

	var req linkUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.Link == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no data provided for update"})
	}
	errs := fieldErrors{}
	if req.Name != nil {
		v := checkShortStr(errs, "name", *req.Name)
		req.Name = &v
	}
	if req.Link != nil {
		v := checkLongStr(errs, "link", *req.Link)
		req.Link = &v
	}
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	updated, err := h.Links.Update(c.Request().Context(), link.ID, req.Name, req.Link)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "social link not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update link failed"})
	}
	h.invalidateLinkList(c, target.ID)
	return c.JSON(http.StatusOK, updated)
}

// DeleteSocialLink handles DELETE /users/:id/social-links/:link_id.
func (h *UserHandler) DeleteSocialLink(c echo.Context) error {
	target, actorID, actorRole, ok := h.loadTarget(c)
	if !ok {
		return nil
	}
	if !auth.CanEdit(actorRole, actorID, target.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only modify your own profile"})
	}
	link, ok := h.ownLink(c, target.ID)
	if !ok {
		return nil
	}

	if err := h.Links.Delete(c.Request().Context(), link.ID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "social link not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete link failed"})
	}
	h.invalidateLinkList(c, target.ID)
	return c.NoContent(http.StatusNoContent)
}

// ownLink parses :link_id and loads the row, requiring it to belong to
// the profile owner from the URL. Writes its own response and reports
// ok=false on failure.
func (h *UserHandler) ownLink(c echo.Context, ownerID uuid.UUID) (model.UserSocialLink, bool) {
	linkID, err := strconv.ParseInt(c.Param("link_id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link id"})
		return model.UserSocialLink{}, false
	}
	link, err := h.Links.GetByID(c.Request().Context(), linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "social link not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.UserSocialLink{}, false
	}
	if link.UserID != ownerID {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "social link not found"})
		return model.UserSocialLink{}, false
	}
	return link, true
}

func (h *UserHandler) invalidateLinkList(c echo.Context, ownerID uuid.UUID) {
	middleware.InvalidateCache(h.Cache, h.RDB, c, "/users/"+ownerID.String()+"/social-links")
}
