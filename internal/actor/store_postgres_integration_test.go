//go:build integration

package actor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/sentinel"
	"cargotrace/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T(), Schema)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "actors"))
}

func (s *PostgresStoreSuite) seedActor(email string, role domain.Role) *Actor {
	a := &Actor{
		ID:           domain.ActorID(uuid.New()),
		Name:         "Pat",
		Email:        email,
		Role:         role,
		PasswordHash: []byte("$2a$10$fakehashfortest"),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Create(s.ctx, a))
	return a
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	a := s.seedActor("pat@example.com", domain.RoleTransporter)

	got, err := s.store.FindByEmail(s.ctx, "pat@example.com")
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)
	s.Equal(domain.RoleTransporter, got.Role)
	s.Equal(a.PasswordHash, got.PasswordHash)

	got, err = s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("pat@example.com", got.Email)
}

func (s *PostgresStoreSuite) TestEmailIsCaseInsensitive() {
	s.seedActor("Pat@Example.com", domain.RoleSupplier)

	got, err := s.store.FindByEmail(s.ctx, "PAT@EXAMPLE.COM")
	s.Require().NoError(err)
	s.Equal("pat@example.com", got.Email)
}

func (s *PostgresStoreSuite) TestDuplicateEmail() {
	s.seedActor("pat@example.com", domain.RoleSupplier)

	dup := &Actor{
		ID:           domain.ActorID(uuid.New()),
		Name:         "Other",
		Email:        "PAT@example.com",
		Role:         domain.RoleRetailer,
		PasswordHash: []byte("x"),
		CreatedAt:    time.Now().UTC(),
	}
	err := s.store.Create(s.ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByEmail(s.ctx, "ghost@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(s.ctx, domain.ActorID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
