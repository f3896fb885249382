// Package actor is the stakeholder registry: suppliers, transporters,
// warehouses, retailers, and admins, with credentials and JWT issuance.
package actor

import (
	"time"

	"cargotrace/pkg/domain"
)

// Actor is a registered stakeholder. PasswordHash is a bcrypt hash and
// never leaves the service layer.
type Actor struct {
	ID           domain.ActorID
	Name         string
	Email        string
	Role         domain.Role
	PasswordHash []byte
	CreatedAt    time.Time
}
