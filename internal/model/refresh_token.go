package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken models a row in the 'refresh_tokens' table. The token
// column holds the signed string exactly as handed to the client; rotation
// and revocation flip Active to false, they never delete the row.
type RefreshToken struct {
	ID        int64
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	Active    bool
}
