package actor

import (
	"context"

	"cargotrace/pkg/domain"
)

// Store persists actors. Email is the unique login identifier; Create
// returns sentinel.ErrAlreadyUsed when it is taken.
type Store interface {
	Create(ctx context.Context, a *Actor) error
	FindByEmail(ctx context.Context, email string) (*Actor, error)
	FindByID(ctx context.Context, id domain.ActorID) (*Actor, error)
}
