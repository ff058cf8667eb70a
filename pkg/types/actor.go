package types

import (
	"github.com/google/uuid"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// Actor is the identity resolved by the auth middleware. An order must be
// attributable to either a user or an admin; the core trusts this value and
// never re-verifies tokens.
type Actor struct {
	UserID  *uuid.UUID
	AdminID *uuid.UUID
	Role    enums.ActorRole
}

// UserActor builds an actor for a shopper or trader identity.
func UserActor(id uuid.UUID, role enums.ActorRole) Actor {
	return Actor{UserID: &id, Role: role}
}

// AdminActor builds an actor for a back-office identity.
func AdminActor(id uuid.UUID) Actor {
	return Actor{AdminID: &id, Role: enums.ActorRoleAdmin}
}

// Authenticated reports whether at least one identity is present.
func (a Actor) Authenticated() bool {
	return (a.UserID != nil && *a.UserID != uuid.Nil) ||
		(a.AdminID != nil && *a.AdminID != uuid.Nil)
}

// IsTrader reports whether trader pricing applies to this actor.
func (a Actor) IsTrader() bool {
	return a.Role == enums.ActorRoleTrader
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.ActorRoleAdmin
}
