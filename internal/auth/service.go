// Package auth owns the credential lifecycle: registration, login, refresh
// rotation, revocation and current-user resolution. Every operation runs
// as a single transaction against the store.
package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
	"github.com/kindleapp/kindle-api/internal/repository"
	"github.com/kindleapp/kindle-api/internal/token"
	"github.com/kindleapp/kindle-api/internal/utils"
)

// TokenPair is what Register, Login and Refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RevokedToken reports a refresh token after deactivation.
type RevokedToken struct {
	RefreshToken string `json:"refresh_token"`
	Active       bool   `json:"active"`
}

// RegisterInput is the already-validated payload for Register.
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Surname     string
	DateOfBirth string
	Bio         string
	Gender      string
	Country     string
	City        string
}

// Service orchestrates the auth lifecycle against the store and codec.
type Service struct {
	db         *sql.DB
	users      *repository.UserRepo
	tokens     *repository.TokenRepo
	photos     *repository.PhotoRepo
	links      *repository.SocialLinkRepo
	codec      *token.Codec
	bcryptCost int
}

func NewService(db *sql.DB, codec *token.Codec, bcryptCost int) *Service {
	return &Service{
		db:         db,
		users:      repository.NewUserRepo(db),
		tokens:     repository.NewTokenRepo(db),
		photos:     repository.NewPhotoRepo(db),
		links:      repository.NewSocialLinkRepo(db),
		codec:      codec,
		bcryptCost: bcryptCost,
	}
}

// Codec exposes the token codec for the middleware and cookie helpers.
func (s *Service) Codec() *token.Codec { return s.codec }

// Users exposes the user repo for read-only lookups outside the service.
func (s *Service) Users() *repository.UserRepo { return s.users }

// Photos exposes the photo repo for the profile handlers.
func (s *Service) Photos() *repository.PhotoRepo { return s.photos }

// Links exposes the social-link repo for the profile handlers.
func (s *Service) Links() *repository.SocialLinkRepo { return s.links }

// Register creates a user with role "user" and logs them in. A unique
// violation surfaces as ErrDuplicateEmail whether the email existed before
// the call or won a concurrent race.
func (s *Service) Register(ctx context.Context, in RegisterInput) (uuid.UUID, TokenPair, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return uuid.Nil, TokenPair{}, err
	}
	id := uuid.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, TokenPair{}, err
	}
	defer tx.Rollback()

	err = s.users.WithTx(tx).Create(ctx, model.User{
		ID:           id,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         in.Name,
		Surname:      in.Surname,
		DateOfBirth:  in.DateOfBirth,
		Bio:          in.Bio,
		Gender:       in.Gender,
		Country:      in.Country,
		City:         in.City,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return uuid.Nil, TokenPair{}, ErrDuplicateEmail
		}
		return uuid.Nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, tx, id, model.RoleUser)
	if err != nil {
		return uuid.Nil, TokenPair{}, err
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, TokenPair{}, err
	}
	return id, pair, nil
}

// Login verifies credentials and opens a new session chain. Each login
// creates an additional refresh chain; existing sessions stay valid.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TokenPair{}, err
	}
	defer tx.Rollback()

	u, err := s.users.WithTx(tx).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, tx, u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	if err := tx.Commit(); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// issuePair mints an access token and a persisted refresh token inside the
// caller's transaction. Register and Login embed the role in the access
// token; Refresh passes role "" and the resulting token carries no role
// claim, which downstream resolves to "user".
func (s *Service) issuePair(ctx context.Context, tx *sql.Tx, userID uuid.UUID, role string) (TokenPair, error) {
	access, err := s.codec.IssueAccess(userID, role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.tokens.WithTx(tx).Store(ctx, userID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the presented refresh token. Checks run in order and the
// first failure wins: stored row must exist, must be active, and the string
// must verify as an unexpired refresh token. On success the presented row
// is deactivated and a fresh pair is issued for the same subject.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TokenPair{}, err
	}
	defer tx.Rollback()

	tokens := s.tokens.WithTx(tx)
	row, err := tokens.GetByToken(ctx, presented)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return TokenPair{}, ErrTokenNotFound
		}
		return TokenPair{}, err
	}
	if !row.Active {
		return TokenPair{}, ErrTokenInactive
	}
	claims, err := s.codec.VerifyType(presented, token.TypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	// Compare-and-swap on the active flag: if a concurrent refresh of the
	// same token got here first, this call loses and fails like a replay.
	flipped, err := tokens.Deactivate(ctx, presented)
	if err != nil {
		return TokenPair{}, err
	}
	if !flipped {
		return TokenPair{}, ErrTokenInactive
	}

	pair, err := s.issuePair(ctx, tx, claims.Subject, "")
	if err != nil {
		return TokenPair{}, err
	}
	if err := tx.Commit(); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Revoke deactivates a single refresh token. Same check order as Refresh,
// but an inactive row reports ErrTokenAlreadyRevoked.
func (s *Service) Revoke(ctx context.Context, presented string) (RevokedToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RevokedToken{}, err
	}
	defer tx.Rollback()

	tokens := s.tokens.WithTx(tx)
	row, err := tokens.GetByToken(ctx, presented)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return RevokedToken{}, ErrTokenNotFound
		}
		return RevokedToken{}, err
	}
	if !row.Active {
		return RevokedToken{}, ErrTokenAlreadyRevoked
	}
	if _, err := s.codec.VerifyType(presented, token.TypeRefresh); err != nil {
		return RevokedToken{}, err
	}
	if _, err := tokens.Deactivate(ctx, presented); err != nil {
		return RevokedToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return RevokedToken{}, err
	}
	return RevokedToken{RefreshToken: presented, Active: false}, nil
}

// RevokeAll deactivates every active refresh token of the user and returns
// the newly-deactivated set. Idempotent: a second call returns an empty
// list.
func (s *Service) RevokeAll(ctx context.Context, userID uuid.UUID) ([]RevokedToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := s.tokens.WithTx(tx).DeactivateAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := make([]RevokedToken, 0, len(rows))
	for _, r := range rows {
		out = append(out, RevokedToken{RefreshToken: r.Token, Active: false})
	}
	return out, nil
}

// CurrentUser resolves an access token to a live user. The role attached
// to the identity comes from the token claim, not the store, so a role
// change only takes effect once the holder re-authenticates. A missing
// role claim resolves to "user". Every failure is ErrUnauthenticated.
func (s *Service) CurrentUser(ctx context.Context, raw string) (model.User, string, error) {
	claims, err := s.codec.VerifyType(raw, token.TypeAccess)
	if err != nil {
		return model.User{}, "", ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		// Covers a deleted account holding a still-valid token.
		return model.User{}, "", ErrUnauthenticated
	}
	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}
	return u, role, nil
}

// DeleteAccount removes a user and all dependent rows in one transaction:
// photos, social links, refresh tokens, then the user itself. The schema's
// ON DELETE CASCADE backs this up, but the deletes are explicit so the
// contract does not depend on it.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.photos.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.links.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.WithTx(tx).DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.WithTx(tx).Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return repository.ErrUserNotFound
		}
		return err
	}
	return tx.Commit()
}
