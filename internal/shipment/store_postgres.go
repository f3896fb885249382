package shipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/sentinel"
)

// Schema creates the shipment tables. Applied by deploy tooling and by the
// integration test container.
const Schema = `
CREATE TABLE IF NOT EXISTS shipments (
	shipment_hash           TEXT PRIMARY KEY,
	batch_id                TEXT NOT NULL,
	supplier_id             UUID NOT NULL,
	number_of_containers    INT NOT NULL,
	total_quantity          INT NOT NULL,
	quantity_per_container  INT NOT NULL,
	status                  TEXT NOT NULL,
	is_locked               BOOLEAN NOT NULL DEFAULT FALSE,
	tx_hash                 TEXT NOT NULL DEFAULT '',
	transporter_id          UUID,
	transporter_assigned_at TIMESTAMPTZ,
	warehouse_id            UUID,
	warehouse_assigned_at   TIMESTAMPTZ,
	retailer_id             UUID,
	retailer_assigned_at    TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS containers (
	container_id     TEXT PRIMARY KEY,
	shipment_hash    TEXT NOT NULL REFERENCES shipments(shipment_hash),
	container_number INT NOT NULL,
	quantity         INT NOT NULL,
	status           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_containers_shipment ON containers(shipment_hash);

CREATE TABLE IF NOT EXISTS shipment_documents (
	id            BIGSERIAL PRIMARY KEY,
	shipment_hash TEXT NOT NULL REFERENCES shipments(shipment_hash),
	name          TEXT NOT NULL,
	uri           TEXT NOT NULL,
	uploaded_at   TIMESTAMPTZ NOT NULL
);
`

// Postgres implements Store on database/sql with the lib/pq driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *Postgres) CreateShipment(ctx context.Context, sh *Shipment, containers []Container) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create shipment: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shipments (
			shipment_hash, batch_id, supplier_id, number_of_containers,
			total_quantity, quantity_per_container, status, is_locked,
			tx_hash, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		string(sh.ShipmentHash),
		sh.BatchID,
		uuid.UUID(sh.Supplier),
		sh.NumberOfContainers,
		sh.TotalQuantity,
		sh.QuantityPerContainer,
		string(sh.Status),
		sh.IsLocked,
		sh.TxHash,
		sh.CreatedAt,
		sh.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert shipment: %w", err)
	}

	for i := range containers {
		c := &containers[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO containers (
				container_id, shipment_hash, container_number,
				quantity, status, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			string(c.ContainerID),
			string(c.ShipmentHash),
			c.ContainerNumber,
			c.Quantity,
			string(c.Status),
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert container: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create shipment: %w", err)
	}
	return nil
}

func (s *Postgres) FindShipment(ctx context.Context, hash domain.ShipmentHash) (*Shipment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT shipment_hash, batch_id, supplier_id, number_of_containers,
		       total_quantity, quantity_per_container, status, is_locked,
		       tx_hash, transporter_id, transporter_assigned_at,
		       warehouse_id, warehouse_assigned_at,
		       retailer_id, retailer_assigned_at,
		       created_at, updated_at
		FROM shipments
		WHERE shipment_hash = $1
	`, string(hash))

	sh, err := scanShipment(row)
	if err != nil {
		return nil, err
	}

	docs, err := s.listDocuments(ctx, hash)
	if err != nil {
		return nil, err
	}
	sh.SupportingDocuments = docs
	return sh, nil
}

func (s *Postgres) listDocuments(ctx context.Context, hash domain.ShipmentHash) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, uri, uploaded_at
		FROM shipment_documents
		WHERE shipment_hash = $1
		ORDER BY id
	`, string(hash))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Name, &d.URI, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *Postgres) FindContainer(ctx context.Context, id domain.ContainerID) (*Container, error) {
	var c Container
	var containerID, shipmentHash, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT container_id, shipment_hash, container_number, quantity,
		       status, created_at, updated_at
		FROM containers
		WHERE container_id = $1
	`, string(id)).Scan(
		&containerID, &shipmentHash, &c.ContainerNumber,
		&c.Quantity, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query container: %w", err)
	}
	c.ContainerID = domain.ContainerID(containerID)
	c.ShipmentHash = domain.ShipmentHash(shipmentHash)
	c.Status = lifecycle.ContainerStatus(status)
	return &c, nil
}

func (s *Postgres) ListContainers(ctx context.Context, hash domain.ShipmentHash) ([]Container, error) {
	if _, err := s.FindShipment(ctx, hash); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT container_id, shipment_hash, container_number, quantity,
		       status, created_at, updated_at
		FROM containers
		WHERE shipment_hash = $1
		ORDER BY container_number
	`, string(hash))
	if err != nil {
		return nil, fmt.Errorf("query containers: %w", err)
	}
	defer rows.Close()

	var out []Container
	for rows.Next() {
		var c Container
		var containerID, shipmentHash, status string
		if err := rows.Scan(
			&containerID, &shipmentHash, &c.ContainerNumber,
			&c.Quantity, &status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		c.ContainerID = domain.ContainerID(containerID)
		c.ShipmentHash = domain.ShipmentHash(shipmentHash)
		c.Status = lifecycle.ContainerStatus(status)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate containers: %w", err)
	}
	return out, nil
}

func (s *Postgres) AdvanceContainer(ctx context.Context, id domain.ContainerID, from, to lifecycle.ContainerStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE containers
		SET status = $1, updated_at = NOW()
		WHERE container_id = $2 AND status = $3
	`, string(to), string(id), string(from))
	if err != nil {
		return fmt.Errorf("advance container: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance container rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing container from a lost compare-and-set.
	if _, err := s.FindContainer(ctx, id); err != nil {
		return err
	}
	return sentinel.ErrConflict
}

func (s *Postgres) SetShipmentStatus(ctx context.Context, hash domain.ShipmentHash, status lifecycle.ShipmentStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shipments
		SET status = $1, updated_at = NOW()
		WHERE shipment_hash = $2
	`, string(status), string(hash))
	if err != nil {
		return fmt.Errorf("set shipment status: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) LockShipment(ctx context.Context, hash domain.ShipmentHash, txHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shipments
		SET is_locked = TRUE, tx_hash = $1, updated_at = NOW()
		WHERE shipment_hash = $2 AND is_locked = FALSE
	`, txHash, string(hash))
	if err != nil {
		return fmt.Errorf("lock shipment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock shipment rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.FindShipment(ctx, hash); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *Postgres) Assign(ctx context.Context, hash domain.ShipmentHash, role domain.Role, a Assignment) error {
	var query string
	switch role {
	case domain.RoleTransporter:
		query = `UPDATE shipments SET transporter_id = $1, transporter_assigned_at = $2, updated_at = NOW() WHERE shipment_hash = $3`
	case domain.RoleWarehouse:
		query = `UPDATE shipments SET warehouse_id = $1, warehouse_assigned_at = $2, updated_at = NOW() WHERE shipment_hash = $3`
	case domain.RoleRetailer:
		query = `UPDATE shipments SET retailer_id = $1, retailer_assigned_at = $2, updated_at = NOW() WHERE shipment_hash = $3`
	default:
		return sentinel.ErrInvalidState
	}

	res, err := s.db.ExecContext(ctx, query, uuid.UUID(a.Actor), a.AssignedAt, string(hash))
	if err != nil {
		return fmt.Errorf("assign %s: %w", role, err)
	}
	return requireAffected(res)
}

func (s *Postgres) AddDocument(ctx context.Context, hash domain.ShipmentHash, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shipment_documents (shipment_hash, name, uri, uploaded_at)
		VALUES ($1, $2, $3, $4)
	`, string(hash), doc.Name, doc.URI, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) ListAssigned(ctx context.Context, actor domain.ActorID, role domain.Role) ([]Shipment, error) {
	var column string
	switch role {
	case domain.RoleTransporter:
		column = "transporter_id"
	case domain.RoleWarehouse:
		column = "warehouse_id"
	case domain.RoleRetailer:
		column = "retailer_id"
	default:
		return nil, sentinel.ErrInvalidState
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT shipment_hash, batch_id, supplier_id, number_of_containers,
		       total_quantity, quantity_per_container, status, is_locked,
		       tx_hash, transporter_id, transporter_assigned_at,
		       warehouse_id, warehouse_assigned_at,
		       retailer_id, retailer_assigned_at,
		       created_at, updated_at
		FROM shipments
		WHERE `+column+` = $1
		ORDER BY created_at DESC
	`, uuid.UUID(actor))
	if err != nil {
		return nil, fmt.Errorf("query assigned shipments: %w", err)
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*Shipment, error) {
	var (
		sh                    Shipment
		hash, batchID, status string
		txHash                string
		supplierID            uuid.UUID
		transporterID         *uuid.UUID
		transporterAt         *time.Time
		warehouseID           *uuid.UUID
		warehouseAt           *time.Time
		retailerID            *uuid.UUID
		retailerAt            *time.Time
	)

	err := row.Scan(
		&hash, &batchID, &supplierID, &sh.NumberOfContainers,
		&sh.TotalQuantity, &sh.QuantityPerContainer, &status, &sh.IsLocked,
		&txHash, &transporterID, &transporterAt,
		&warehouseID, &warehouseAt,
		&retailerID, &retailerAt,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan shipment: %w", err)
	}

	sh.ShipmentHash = domain.ShipmentHash(hash)
	sh.BatchID = batchID
	sh.Supplier = domain.ActorID(supplierID)
	sh.Status = lifecycle.ShipmentStatus(status)
	sh.TxHash = txHash
	if transporterID != nil && transporterAt != nil {
		sh.AssignedTransporter = &Assignment{Actor: domain.ActorID(*transporterID), AssignedAt: *transporterAt}
	}
	if warehouseID != nil && warehouseAt != nil {
		sh.AssignedWarehouse = &Assignment{Actor: domain.ActorID(*warehouseID), AssignedAt: *warehouseAt}
	}
	if retailerID != nil && retailerAt != nil {
		sh.AssignedRetailer = &Assignment{Actor: domain.ActorID(*retailerID), AssignedAt: *retailerAt}
	}
	return &sh, nil
}
