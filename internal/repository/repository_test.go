package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/kindleapp/kindle-api/internal/model"
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

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testUser(email string) model.User {
	return model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$04$notarealhash",
		Role:         model.RoleUser,
		Name:         "Ada",
		Surname:      "Lovelace",
		DateOfBirth:  "1990-12-10",
		Gender:       "f",
		Country:      "UK",
		City:         "London",
	}
}

func strptr(s string) *string { return &s }

func TestUserRepoCreateAndGet(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := testUser("ada@example.com")
	require.NoError(t, repo.Create(ctx, u))

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("dup@example.com")))
	err := repo.Create(ctx, testUser("dup@example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepoUpdateProfilePartial(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := testUser("ada@example.com")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.UpdateProfile(ctx, u.ID, model.UserUpdate{
		City: strptr("Cambridge"),
		Bio:  strptr("mathematician"),
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cambridge", got.City)
	assert.Equal(t, "mathematician", got.Bio)
	// Untouched fields survive.
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Name, got.Name)

	// Empty update is a no-op, not an error.
	assert.NoError(t, repo.UpdateProfile(ctx, u.ID, model.UserUpdate{}))
}

func TestUserRepoUpdateProfileEmailConflict(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	a := testUser("a@example.com")
	b := testUser("b@example.com")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	err := repo.UpdateProfile(ctx, b.ID, model.UserUpdate{Email: strptr("a@example.com")})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepoUpdateRole(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := testUser("ada@example.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.UpdateRole(ctx, u.ID, model.RoleModerator))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, got.Role)

	assert.ErrorIs(t, repo.UpdateRole(ctx, uuid.New(), model.RoleModerator), ErrUserNotFound)
}

func TestUserRepoDelete(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := testUser("ada@example.com")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), ErrUserNotFound)
}

func TestUserRepoListByRole(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	mod := testUser("mod@example.com")
	mod.Role = model.RoleModerator
	require.NoError(t, repo.Create(ctx, mod))
	require.NoError(t, repo.Create(ctx, testUser("user1@example.com")))
	require.NoError(t, repo.Create(ctx, testUser("user2@example.com")))

	mods, err := repo.ListByRole(ctx, model.RoleModerator)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, mod.ID, mods[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTokenRepoStoreAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	userID := uuid.New()

	id, err := repo.Store(ctx, userID, "tok-1")
	require.NoError(t, err)
	assert.Positive(t, id)

	row, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, userID, row.UserID)
	assert.True(t, row.Active)

	_, err = repo.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepoDeactivateIsOneShot(t *testing.T) {
	repo := NewTokenRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Store(ctx, uuid.New(), "tok-1")
	require.NoError(t, err)

	flipped, err := repo.Deactivate(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, flipped)

	// The guard on active=TRUE makes the second flip lose.
	flipped, err = repo.Deactivate(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestTokenRepoDeactivateAllForUser(t *testing.T) {
	repo := NewTokenRepo(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	_, err := repo.Store(ctx, userID, "tok-1")
	require.NoError(t, err)
	_, err = repo.Store(ctx, userID, "tok-2")
	require.NoError(t, err)
	_, err = repo.Store(ctx, other, "tok-other")
	require.NoError(t, err)

	rows, err := repo.DeactivateAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.False(t, r.Active)
	}

	// Other users' tokens stay untouched.
	row, err := repo.GetByToken(ctx, "tok-other")
	require.NoError(t, err)
	assert.True(t, row.Active)

	again, err := repo.DeactivateAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

// interceptExec runs fn once, right before the first statement containing
// match is executed. It lets a test splice a write between a repo method's
// internal statements.
type interceptExec struct {
	DBTX
	match string
	fn    func()
	fired bool
}

func (i *interceptExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if !i.fired && strings.Contains(query, i.match) {
		i.fired = true
		i.fn()
	}
	return i.DBTX.ExecContext(ctx, query, args...)
}

func TestTokenRepoDeactivateAllLeavesConcurrentLoginActive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	repo := NewTokenRepo(db)

	_, err := repo.Store(ctx, userID, "tok-1")
	require.NoError(t, err)
	_, err = repo.Store(ctx, userID, "tok-2")
	require.NoError(t, err)

	// A login lands between the SELECT and the UPDATE. Its token must
	// stay active, because the caller never gets to see it in the
	// returned list.
	hooked := NewTokenRepo(&interceptExec{
		DBTX:  db,
		match: "UPDATE refresh_tokens",
		fn: func() {
			_, err := repo.Store(ctx, userID, "tok-concurrent")
			require.NoError(t, err)
		},
	})

	rows, err := hooked.DeactivateAllForUser(ctx, userID)
	require.NoError(t, err)
	reported := make([]string, 0, len(rows))
	for _, r := range rows {
		reported = append(reported, r.Token)
	}
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, reported)

	late, err := repo.GetByToken(ctx, "tok-concurrent")
	require.NoError(t, err)
	assert.True(t, late.Active)
}

func TestTokenRepoDeleteInactiveByUser(t *testing.T) {
	repo := NewTokenRepo(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.Store(ctx, userID, "tok-active")
	require.NoError(t, err)
	_, err = repo.Store(ctx, userID, "tok-spent")
	require.NoError(t, err)
	_, err = repo.Deactivate(ctx, "tok-spent")
	require.NoError(t, err)

	n, err := repo.DeleteInactiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetByToken(ctx, "tok-spent")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = repo.GetByToken(ctx, "tok-active")
	assert.NoError(t, err)
}

func TestPhotoRepoCRUD(t *testing.T) {
	repo := NewPhotoRepo(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	p, err := repo.Create(ctx, userID, "https://img.example.com/a.png")
	require.NoError(t, err)
	assert.Positive(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	updated, err := repo.UpdateURL(ctx, p.ID, "https://img.example.com/b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/b.png", updated.URL)

	_, err = repo.UpdateURL(ctx, 9999, "https://img.example.com/x.png")
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrPhotoNotFound)
}

func TestSocialLinkRepoCRUD(t *testing.T) {
	repo := NewSocialLinkRepo(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	l, err := repo.Create(ctx, userID, "github", "https://github.com/ada")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, l.ID, nil, strptr("https://github.com/lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "github", updated.Name)
	assert.Equal(t, "https://github.com/lovelace", updated.Link)

	_, err = repo.Update(ctx, 9999, strptr("x"), nil)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	require.NoError(t, repo.Delete(ctx, l.ID))
	assert.ErrorIs(t, repo.Delete(ctx, l.ID), ErrLinkNotFound)
}
