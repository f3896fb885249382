package actor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/sentinel"
)

// Schema creates the actors table.
const Schema = `
CREATE TABLE IF NOT EXISTS actors (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL,
	password_hash BYTEA NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
`

// Postgres implements Store on database/sql with the lib/pq driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, a *Actor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actors (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(a.ID),
		a.Name,
		strings.ToLower(a.Email),
		string(a.Role),
		a.PasswordHash,
		a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert actor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*Actor, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, role, password_hash, created_at
		FROM actors
		WHERE email = $1
	`, strings.ToLower(email))
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ActorID) (*Actor, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, role, password_hash, created_at
		FROM actors
		WHERE id = $1
	`, uuid.UUID(id))
}

func (s *Postgres) findOne(ctx context.Context, query string, arg any) (*Actor, error) {
	var (
		a    Actor
		id   uuid.UUID
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&id, &a.Name, &a.Email, &role, &a.PasswordHash, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query actor: %w", err)
	}
	a.ID = domain.ActorID(id)
	a.Role = domain.Role(role)
	return &a, nil
}
