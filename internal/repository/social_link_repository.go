package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
)

// SocialLinkRepo persists user social-media links.
type SocialLinkRepo struct{ db DBTX }

func NewSocialLinkRepo(db DBTX) *SocialLinkRepo { return &SocialLinkRepo{db: db} }

func (r *SocialLinkRepo) WithTx(tx *sql.Tx) *SocialLinkRepo { return &SocialLinkRepo{db: tx} }

// Create inserts a link and returns it with its assigned id.
func (r *SocialLinkRepo) Create(ctx context.Context, userID uuid.UUID, name, link string) (model.UserSocialLink, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_social_links (user_id, name, link) VALUES (?,?,?)", userID, name, link)
	if err != nil {
		return model.UserSocialLink{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.UserSocialLink{}, err
	}
	return model.UserSocialLink{ID: id, UserID: userID, Name: name, Link: link}, nil
}

// GetByID fetches a link by id.
func (r *SocialLinkRepo) GetByID(ctx context.Context, id int64) (model.UserSocialLink, error) {
	var l model.UserSocialLink
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, link FROM user_social_links WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.UserID, &l.Name, &l.Link)
	if err == sql.ErrNoRows {
		return model.UserSocialLink{}, ErrLinkNotFound
	}
	if err != nil {
		return model.UserSocialLink{}, err
	}
	return l, nil
}

// ListByUser returns all links of a user, oldest first.
func (r *SocialLinkRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserSocialLink, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, link FROM user_social_links WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UserSocialLink{}
	for rows.Next() {
		var l model.UserSocialLink
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Link); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update replaces name and/or link; nil fields are left untouched.
func (r *SocialLinkRepo) Update(ctx context.Context, id int64, name, link *string) (model.UserSocialLink, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return model.UserSocialLink{}, err
	}
	if name != nil {
		l.Name = *name
	}
	if link != nil {
		l.Link = *link
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE user_social_links SET name=?, link=? WHERE id=?", l.Name, l.Link, id); err != nil {
		return model.UserSocialLink{}, err
	}
	return l, nil
}

// Delete removes a link by id.
func (r *SocialLinkRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_social_links WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// DeleteByUser removes every link of the user. Used by the
// account-deletion cascade.
func (r *SocialLinkRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_social_links WHERE user_id=?", userID)
	return err
}
