package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/middleware"
	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/queue"
	"github.com/kindleapp/kindle-api/internal/token"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Svc          *auth.Service
	Events       *queue.Publisher // nil disables event publishing
	CookieSecure bool
	CookieDomain string
}

func NewAuthHandler(svc *auth.Service, events *queue.Publisher, cookieSecure bool, cookieDomain string) *AuthHandler {
	return &AuthHandler{Svc: svc, Events: events, CookieSecure: cookieSecure, CookieDomain: cookieDomain}
}

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	DateOfBirth string `json:"date_of_birth"`
	Bio         string `json:"bio"`
	Gender      string `json:"gender"`
	Country     string `json:"country"`
	City        string `json:"city"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register: create the account with role
// "user" and log it in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	errs := fieldErrors{}
	in := auth.RegisterInput{
		Email:       checkEmail(errs, req.Email),
		Password:    req.Password,
		Name:        checkShortStr(errs, "name", req.Name),
		Surname:     checkShortStr(errs, "surname", req.Surname),
		DateOfBirth: checkDateOfBirth(errs, req.DateOfBirth),
		Bio:         checkBio(errs, req.Bio),
		Gender:      checkGender(errs, req.Gender),
		Country:     checkShortStr(errs, "country", req.Country),
		City:        checkShortStr(errs, "city", req.City),
	}
	checkPassword(errs, req.Password)
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	id, pair, err := h.Svc.Register(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	h.publish(c, queue.EventUserRegistered, id, in.Email, model.RoleUser)
	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusCreated, pair)
}

// Login handles POST /auth/login. Unknown email and wrong password get
// the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	errs := fieldErrors{}
	email := checkEmail(errs, req.Email)
	checkPassword(errs, req.Password)
	if !errs.ok() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	pair, err := h.Svc.Login(c.Request().Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, pair)
}

// Refresh handles POST /auth/refresh. The refresh token comes from its
// cookie; a successful call rotates it and re-sets both cookies.
func (h *AuthHandler) Refresh(c echo.Context) error {
	presented, ok := refreshTokenFromCookie(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token not found in cookies"})
	}

	pair, err := h.Svc.Refresh(c.Request().Context(), presented)
	if err != nil {
		return h.refreshFailure(c, err)
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, pair)
}

// Revoke handles POST /auth/revoke: deactivate the presented refresh
// token without touching the rest of the user's sessions.
func (h *AuthHandler) Revoke(c echo.Context) error {
	presented, ok := refreshTokenFromCookie(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token not found in cookies"})
	}

	revoked, err := h.Svc.Revoke(c.Request().Context(), presented)
	if err != nil {
		return h.refreshFailure(c, err)
	}
	return c.JSON(http.StatusOK, revoked)
}

// Logout handles POST /auth/logout (protected): revoke every active
// refresh token of the current user and clear both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := c.Get(middleware.CtxUserID).(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthenticated.Error()})
	}
	revoked, err := h.Svc.RevokeAll(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, revoked)
}

// Me handles GET /auth/me (protected). The role reflects the token claim.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := c.Get(middleware.CtxCurrentUser).(model.User)
	role, _ := c.Get(middleware.CtxRole).(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthenticated.Error()})
	}
	return c.JSON(http.StatusOK, model.NewProfile(u, role))
}

// refreshFailure maps token lifecycle errors to a 401; anything else is a
// server fault.
func (h *AuthHandler) refreshFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenNotFound),
		errors.Is(err, auth.ErrTokenInactive),
		errors.Is(err, auth.ErrTokenAlreadyRevoked),
		errors.Is(err, token.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token operation failed"})
	}
}

func refreshTokenFromCookie(c echo.Context) (string, bool) {
	ck, err := c.Cookie(RefreshCookie)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// publish emits a user lifecycle event, best effort.
func (h *AuthHandler) publish(c echo.Context, typ string, id uuid.UUID, email, role string) {
	if h.Events == nil {
		return
	}
	_ = h.Events.Publish(c.Request().Context(), queue.NewUserEvent(typ, id, email, role))
}
