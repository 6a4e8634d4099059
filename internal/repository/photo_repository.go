package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
)

// PhotoRepo persists user profile photos.
type PhotoRepo struct{ db DBTX }

func NewPhotoRepo(db DBTX) *PhotoRepo { return &PhotoRepo{db: db} }

func (r *PhotoRepo) WithTx(tx *sql.Tx) *PhotoRepo { return &PhotoRepo{db: tx} }

// Create inserts a photo and returns it with its assigned id.
func (r *PhotoRepo) Create(ctx context.Context, userID uuid.UUID, url string) (model.UserPhoto, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_photos (user_id, url) VALUES (?,?)", userID, url)
	if err != nil {
		return model.UserPhoto{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.UserPhoto{}, err
	}
	return model.UserPhoto{ID: id, UserID: userID, URL: url}, nil
}

// GetByID fetches a photo by id.
func (r *PhotoRepo) GetByID(ctx context.Context, id int64) (model.UserPhoto, error) {
	var p model.UserPhoto
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, url FROM user_photos WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.UserID, &p.URL)
	if err == sql.ErrNoRows {
		return model.UserPhoto{}, ErrPhotoNotFound
	}
	if err != nil {
		return model.UserPhoto{}, err
	}
	return p, nil
}

// ListByUser returns all photos of a user, oldest first.
func (r *PhotoRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserPhoto, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, url FROM user_photos WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UserPhoto{}
	for rows.Next() {
		var p model.UserPhoto
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateURL replaces the url of a photo.
func (r *PhotoRepo) UpdateURL(ctx context.Context, id int64, url string) (model.UserPhoto, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return model.UserPhoto{}, err
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE user_photos SET url=? WHERE id=?", url, id); err != nil {
		return model.UserPhoto{}, err
	}
	p.URL = url
	return p, nil
}

// Delete removes a photo by id.
func (r *PhotoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_photos WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// DeleteByUser removes every photo of the user. Used by the
// account-deletion cascade.
func (r *PhotoRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_photos WHERE user_id=?", userID)
	return err
}
