package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/kindleapp/kindle-api/internal/auth"
	"github.com/kindleapp/kindle-api/internal/config"
	"github.com/kindleapp/kindle-api/internal/handler"
	"github.com/kindleapp/kindle-api/internal/router"
	"github.com/kindleapp/kindle-api/internal/token"
)

const testSchema = `
CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user',
    name          TEXT NOT NULL,
    surname       TEXT NOT NULL,
    date_of_birth TEXT NOT NULL,
    bio           TEXT,
    gender        TEXT NOT NULL,
    country       TEXT NOT NULL,
    city          TEXT NOT NULL
);
CREATE TABLE refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    TEXT NOT NULL,
    token      TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE user_photos (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    url     TEXT NOT NULL
);
CREATE TABLE user_social_links (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    name    TEXT NOT NULL,
    link    TEXT NOT NULL
);
`

// testAPI is a full HTTP stack over an in-memory store: real router, real
// middleware, no broker, no Redis.
type testAPI struct {
	e   *echo.Echo
	svc *auth.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return buildTestAPI(t, nil, config.CacheConfig{})
}

// newCachedTestAPI runs the stack against a miniredis-backed response
// cache so invalidation behavior is observable.
func newCachedTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return buildTestAPI(t, rdb, config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache"})
}

func buildTestAPI(t *testing.T, rdb *redis.Client, cache config.CacheConfig) *testAPI {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	codec := token.NewCodec("test-secret", 5*time.Minute, 24*time.Hour)
	svc := auth.NewService(db, codec, 4)

	e := echo.New()
	router.Register(e, router.Deps{
		Auth:  handler.NewAuthHandler(svc, nil, false, ""),
		Users: handler.NewUserHandler(svc, svc.Users(), svc.Photos(), svc.Links(), nil, cache, rdb),
		Admin: handler.NewAdminHandler(svc.Users(), nil),
		RDB:   rdb,
		Cache: cache,
	})
	return &testAPI{e: e, svc: svc}
}

// do runs one request through the router. body is marshalled to JSON when
// non-nil; cookies are attached as-is.
func (a *testAPI) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// doBearer runs a request authenticated via the Authorization header
// instead of cookies.
func (a *testAPI) doBearer(t *testing.T, method, path, accessToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":         email,
		"password":      "password123",
		"name":          "Ada",
		"surname":       "Lovelace",
		"date_of_birth": "1990-12-10",
		"gender":        "f",
		"country":       "UK",
		"city":          "London",
	}
}

// register creates an account over HTTP and returns the auth cookies.
func (a *testAPI) register(t *testing.T, email string) (access, refresh *http.Cookie) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register", registerBody(email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return authCookies(t, rec)
}

// login signs in over HTTP and returns the auth cookies.
func (a *testAPI) login(t *testing.T, email, password string) (access, refresh *http.Cookie) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return authCookies(t, rec)
}

func authCookies(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		switch ck.Name {
		case "access_token":
			access = ck
		case "refresh_token":
			refresh = ck
		}
	}
	require.NotNil(t, access, "access_token cookie missing")
	require.NotNil(t, refresh, "refresh_token cookie missing")
	return access, refresh
}

// userIDFromMe resolves the caller's id via /auth/me.
func (a *testAPI) userIDFromMe(t *testing.T, access *http.Cookie) string {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/auth/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["user_id"].(string)
	require.NotEmpty(t, id)
	return id
}
