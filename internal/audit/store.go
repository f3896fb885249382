package audit

import "context"

// Store persists audit events. Append-only; events are never updated or
// deleted.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListRecent returns up to limit events, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
