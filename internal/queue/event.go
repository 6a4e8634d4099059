// Package queue defines the user lifecycle events exchanged over the
// message broker, along with the publisher and the audit-log consumer.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// UserEventsQueue is the durable queue all user lifecycle events go to.
const UserEventsQueue = "user.events"

// Event types carried in UserEvent.Type.
const (
	EventUserRegistered  = "user.registered"
	EventUserDeleted     = "user.deleted"
	EventUserRoleChanged = "user.role_changed"
)

// UserEvent is published on registration, account deletion and role
// changes. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type UserEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	OccurredAt string `json:"occurred_at"`
}

// NewUserEvent builds a UserEvent stamped with the current UTC time.
func NewUserEvent(typ string, id uuid.UUID, email, role string) UserEvent {
	return UserEvent{
		Type:       typ,
		UserID:     id.String(),
		Email:      email,
		Role:       role,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
