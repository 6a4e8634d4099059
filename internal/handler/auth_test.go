package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHappyPath(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/register", registerBody("ada@example.com"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	access, refresh := authCookies(t, rec)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Positive(t, access.MaxAge)
	assert.Positive(t, refresh.MaxAge)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name  string
		mut   func(map[string]any)
		field string
	}{
		{"bad email", func(b map[string]any) { b["email"] = "not-an-email" }, "email"},
		{"short password", func(b map[string]any) { b["password"] = "short" }, "password"},
		{"empty name", func(b map[string]any) { b["name"] = "  " }, "name"},
		{"bad gender", func(b map[string]any) { b["gender"] = "x" }, "gender"},
		{"malformed dob", func(b map[string]any) { b["date_of_birth"] = "12/10/1990" }, "date_of_birth"},
		{"underage", func(b map[string]any) { b["date_of_birth"] = "2015-01-01" }, "date_of_birth"},
		{"future dob", func(b map[string]any) { b["date_of_birth"] = "2100-01-01" }, "date_of_birth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := registerBody("valid@example.com")
			tc.mut(body)
			rec := api.do(t, http.MethodPost, "/auth/register", body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "dup@example.com")

	rec := api.do(t, http.MethodPost, "/auth/register", registerBody("dup@example.com"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user with this email already exists", decodeBody(t, rec)["error"])
}

func TestLoginWrongCredentialsIndistinguishable(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "ada@example.com")

	wrongPass := api.do(t, http.MethodPost, "/auth/login",
		map[string]any{"email": "ada@example.com", "password": "wrong-password"})
	noUser := api.do(t, http.MethodPost, "/auth/login",
		map[string]any{"email": "ghost@example.com", "password": "password123"})

	require.Equal(t, http.StatusBadRequest, wrongPass.Code)
	require.Equal(t, http.StatusBadRequest, noUser.Code)
	assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.register(t, "ada@example.com")

	rec := api.do(t, http.MethodGet, "/auth/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "user", body["role"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestMeViaBearerHeader(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.register(t, "ada@example.com")

	req := api.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, req.Code)

	rec := api.doBearer(t, http.MethodGet, "/auth/me", access.Value)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeRejectsGarbageToken(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "ada@example.com")

	rec := api.do(t, http.MethodGet, "/auth/me", nil,
		&http.Cookie{Name: "access_token", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	api := newTestAPI(t)
	_, refresh := api.register(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, nextRefresh := authCookies(t, rec)
	assert.NotEqual(t, refresh.Value, nextRefresh.Value)

	// The spent token replays as a 401.
	replay := api.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, replay.Code)

	// The rotated one still works.
	again := api.do(t, http.MethodPost, "/auth/refresh", nil, nextRefresh)
	assert.Equal(t, http.StatusOK, again.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "refresh token not found in cookies", decodeBody(t, rec)["error"])
}

func TestRefreshUnknownToken(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/auth/refresh", nil,
		&http.Cookie{Name: "refresh_token", Value: "never-stored"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevoke(t *testing.T) {
	api := newTestAPI(t)
	_, refresh := api.register(t, "ada@example.com")

	rec := api.do(t, http.MethodPost, "/auth/revoke", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, refresh.Value, body["refresh_token"])
	assert.Equal(t, false, body["active"])

	second := api.do(t, http.MethodPost, "/auth/revoke", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, second.Code)

	refreshAfter := api.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, refreshAfter.Code)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	api := newTestAPI(t)
	access, firstRefresh := api.register(t, "ada@example.com")
	_, secondRefresh := api.login(t, "ada@example.com", "password123")

	rec := api.do(t, http.MethodPost, "/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Both cookies are expired in the response.
	for _, ck := range rec.Result().Cookies() {
		assert.Equal(t, -1, ck.MaxAge, "cookie %s", ck.Name)
	}

	for _, refresh := range []*http.Cookie{firstRefresh, secondRefresh} {
		r := api.do(t, http.MethodPost, "/auth/refresh", nil, refresh)
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
