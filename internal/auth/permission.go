package auth

import (
	"github.com/google/uuid"

	"github.com/kindleapp/kindle-api/internal/model"
)

// Permission decisions for profile mutations. Pure functions, no I/O.
// Sub-resource operations (photos, social links) are gated by the owning
// user's id, never by properties of the sub-resource itself. Unknown roles
// always deny.

// CanEdit reports whether an actor may edit the target profile.
// Admins edit anyone; moderators and users only themselves.
func CanEdit(actorRole string, actorID, targetID uuid.UUID) bool {
	switch actorRole {
	case model.RoleAdmin:
		return true
	case model.RoleModerator, model.RoleUser:
		return actorID == targetID
	default:
		return false
	}
}

// CanDelete reports whether an actor may delete the target account.
// Admins delete anyone. Moderators delete accounts with role "user",
// regardless of whose they are. Users delete only themselves.
func CanDelete(actorRole string, actorID, targetID uuid.UUID, targetRole string) bool {
	switch actorRole {
	case model.RoleAdmin:
		return true
	case model.RoleModerator:
		return targetRole == model.RoleUser
	case model.RoleUser:
		return actorID == targetID
	default:
		return false
	}
}
