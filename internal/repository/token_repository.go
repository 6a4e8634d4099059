package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
)

// TokenRepo persists refresh-token rows. Rotation and revocation only ever
// flip the active flag; rows are removed by DeleteInactiveByUser (GC) or
// when the owning user is deleted.
type TokenRepo struct{ db DBTX }

func NewTokenRepo(db DBTX) *TokenRepo { return &TokenRepo{db: db} }

// WithTx returns a copy of the repo bound to the given transaction.
func (r *TokenRepo) WithTx(tx *sql.Tx) *TokenRepo { return &TokenRepo{db: tx} }

// Store inserts an active refresh-token row and returns its id.
func (r *TokenRepo) Store(ctx context.Context, userID uuid.UUID, tok string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, created_at, active) VALUES (?,?,?,TRUE)",
		userID, tok, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByToken fetches a row by exact token string.
func (r *TokenRepo) GetByToken(ctx context.Context, tok string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, token, active FROM refresh_tokens WHERE token=? LIMIT 1",
		tok).Scan(&t.ID, &t.UserID, &t.Token, &t.Active)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// Deactivate flips active to false for the given token and reports whether
// this call did the flip. The WHERE active=TRUE guard gives compare-and-swap
// semantics: of two concurrent rotations of the same token, exactly one
// observes true here.
func (r *TokenRepo) Deactivate(ctx context.Context, tok string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET active=FALSE WHERE token=? AND active=TRUE", tok)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeactivateAllForUser flips every active token of the user and returns the
// rows it deactivated. The UPDATE is scoped to the ids read by the SELECT,
// so a token stored by a concurrent login between the two statements is
// neither flipped nor misreported. A repeat call returns an empty slice.
func (r *TokenRepo) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) ([]model.RefreshToken, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, token, active FROM refresh_tokens WHERE user_id=? AND active=TRUE",
		userID)
	if err != nil {
		return nil, err
	}
	out := []model.RefreshToken{}
	for rows.Next() {
		var t model.RefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Active); err != nil {
			rows.Close()
			return nil, err
		}
		t.Active = false
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]any, len(out))
	for i, t := range out {
		ids[i] = t.ID
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	_, err = r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET active=FALSE WHERE id IN ("+placeholders+")", ids...)
	return out, err
}

// DeleteInactiveByUser garbage-collects rotated and revoked rows. Not
// required for correctness; inactive rows already fail refresh.
func (r *TokenRepo) DeleteInactiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=? AND active=FALSE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllForUser removes every token row of the user. Used by the
// account-deletion cascade.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
