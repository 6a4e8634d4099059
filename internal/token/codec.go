// Package token issues and verifies the signed bearer strings used for
// authentication. Access tokens are short-lived and stateless; refresh
// tokens use the same encoding but are additionally persisted so they can
// be revoked before their natural expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminator carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed input, expired token, wrong claims. Callers must not be able
// to tell the cases apart.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a verified token. Role is empty when
// the token carries no role claim.
type Claims struct {
	Subject   uuid.UUID
	Role      string
	Type      string
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a process-wide HS256 secret.
// The zero value is unusable; construct with NewCodec.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess signs an access token for the subject. An empty role is
// omitted from the claims; refresh-minted access tokens rely on this.
func (c *Codec) IssueAccess(subject uuid.UUID, role string) (string, error) {
	return c.sign(subject, role, TypeAccess, c.accessTTL)
}

// IssueRefresh signs a refresh token for the subject. Refresh tokens never
// embed a role.
func (c *Codec) IssueRefresh(subject uuid.UUID) (string, error) {
	return c.sign(subject, "", TypeRefresh, c.refreshTTL)
}

func (c *Codec) sign(subject uuid.UUID, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject.String(),
		"type": typ,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify parses and validates a token of either type. Any failure surfaces
// as ErrInvalidToken.
func (c *Codec) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	typ, _ := mc["type"].(string)
	if typ != TypeAccess && typ != TypeRefresh {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{Subject: id, Type: typ}
	if role, ok := mc["role"].(string); ok {
		out.Role = role
	}
	if exp, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}

// VerifyType is Verify plus a check that the token is of the wanted type.
func (c *Codec) VerifyType(raw, typ string) (Claims, error) {
	cl, err := c.Verify(raw)
	if err != nil {
		return Claims{}, err
	}
	if cl.Type != typ {
		return Claims{}, ErrInvalidToken
	}
	return cl, nil
}

// AccessTTL reports the configured access-token lifetime; the HTTP layer
// uses it for cookie max-age.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }
