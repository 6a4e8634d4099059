package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
)

const userColumns = "id,email,password_hash,role,name,surname,date_of_birth,bio,gender,country,city"

// UserRepo persists user rows.
type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

// WithTx returns a copy of the repo bound to the given transaction.
func (r *UserRepo) WithTx(tx *sql.Tx) *UserRepo { return &UserRepo{db: tx} }

// Create inserts a user. The caller supplies the id and password hash.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, strings.TrimSpace(u.Email), u.PasswordHash, u.Role,
		u.Name, u.Surname, u.DateOfBirth, u.Bio, u.Gender, u.Country, u.City)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", strings.TrimSpace(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// UpdateProfile applies the set fields of upd to the user row. Callers
// are expected to have checked existence beforehand; an update that
// changes nothing is not an error here.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.UserUpdate) error {
	set := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+"=?")
			args = append(args, *v)
		}
	}
	add("email", upd.Email)
	add("name", upd.Name)
	add("surname", upd.Surname)
	add("date_of_birth", upd.DateOfBirth)
	add("bio", upd.Bio)
	add("gender", upd.Gender)
	add("country", upd.Country)
	add("city", upd.City)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ",")+" WHERE id=?", args...)
	if isDuplicateErr(err) {
		return ErrEmailExists
	}
	return err
}

// UpdateRole sets the role of a user.
func (r *UserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user row. Dependent rows are removed by the service
// in the same transaction (and by ON DELETE CASCADE at the schema level).
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns every user ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListByRole returns users holding the given role, ordered by email.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY email", role)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var bio sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Surname,
		&u.DateOfBirth, &bio, &u.Gender, &u.Country, &u.City)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Bio = bio.String
	return u, nil
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		var bio sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.Surname,
			&u.DateOfBirth, &bio, &u.Gender, &u.Country, &u.City); err != nil {
			return nil, err
		}
		u.Bio = bio.String
		out = append(out, u)
	}
	return out, rows.Err()
}
