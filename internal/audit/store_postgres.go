package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cargotrace/pkg/domain"
)

// Schema creates the audit_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	timestamp     TIMESTAMPTZ NOT NULL,
	actor         UUID NOT NULL,
	role          TEXT NOT NULL,
	action        TEXT NOT NULL,
	shipment_hash TEXT NOT NULL DEFAULT '',
	container_id  TEXT NOT NULL DEFAULT '',
	reason        TEXT NOT NULL DEFAULT '',
	concern       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC);
`

// Postgres implements Store on database/sql with the lib/pq driver, so the
// trail survives restarts alongside the other Postgres stores.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Append inserts the event. Idempotent on ID so a retried worker delivery
// cannot duplicate an entry.
func (s *Postgres) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, timestamp, actor, role, action, shipment_hash, container_id, reason, concern)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID,
		event.Timestamp,
		uuid.UUID(event.Actor),
		string(event.Role),
		event.Action,
		string(event.ShipmentHash),
		string(event.ContainerID),
		event.Reason,
		event.Concern,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, actor, role, action, shipment_hash, container_id, reason, concern
		FROM audit_events
		ORDER BY timestamp DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event        Event
			actor        uuid.UUID
			role         string
			shipmentHash string
			containerID  string
		)
		if err := rows.Scan(
			&event.ID, &event.Timestamp, &actor, &role, &event.Action,
			&shipmentHash, &containerID, &event.Reason, &event.Concern,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Actor = domain.ActorID(actor)
		event.Role = domain.Role(role)
		event.ShipmentHash = domain.ShipmentHash(shipmentHash)
		event.ContainerID = domain.ContainerID(containerID)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
