//go:build integration

package shipment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cargotrace/internal/lifecycle"
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
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "shipment_documents", "containers", "shipments"))
}

func (s *PostgresStoreSuite) seedShipment(hash domain.ShipmentHash, n int) (*Shipment, []Container) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	sh := &Shipment{
		ShipmentHash:         hash,
		BatchID:              "BATCH-7",
		Supplier:             domain.ActorID(uuid.New()),
		NumberOfContainers:   n,
		TotalQuantity:        n * 10,
		QuantityPerContainer: 10,
		Status:               lifecycle.ShipmentCreated,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	containerList := make([]Container, n)
	for i := range containerList {
		containerList[i] = Container{
			ContainerID:     domain.ContainerID(string(hash) + "-C00" + string(rune('1'+i))),
			ShipmentHash:    hash,
			ContainerNumber: i + 1,
			Quantity:        10,
			Status:          lifecycle.ContainerCreated,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}
	s.Require().NoError(s.store.CreateShipment(s.ctx, sh, containerList))
	return sh, containerList
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	sh, _ := s.seedShipment("pg-hash-a", 3)

	got, err := s.store.FindShipment(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.Equal(sh.BatchID, got.BatchID)
	s.Equal(sh.Supplier, got.Supplier)
	s.False(got.IsLocked)

	listed, err := s.store.ListContainers(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.Require().Len(listed, 3)
	for i, c := range listed {
		s.Equal(i+1, c.ContainerNumber)
	}
}

func (s *PostgresStoreSuite) TestCreateDuplicateHash() {
	sh, _ := s.seedShipment("pg-hash-a", 1)
	err := s.store.CreateShipment(s.ctx, sh, nil)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestAdvanceContainerCAS() {
	_, containerList := s.seedShipment("pg-hash-a", 1)
	id := containerList[0].ContainerID

	s.Require().NoError(s.store.AdvanceContainer(s.ctx, id, lifecycle.ContainerCreated, lifecycle.ContainerInTransit))

	err := s.store.AdvanceContainer(s.ctx, id, lifecycle.ContainerCreated, lifecycle.ContainerInTransit)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	err = s.store.AdvanceContainer(s.ctx, "pg-ghost", lifecycle.ContainerCreated, lifecycle.ContainerInTransit)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	c, err := s.store.FindContainer(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(lifecycle.ContainerInTransit, c.Status)
}

func (s *PostgresStoreSuite) TestLockShipmentOnce() {
	sh, _ := s.seedShipment("pg-hash-a", 1)

	s.Require().NoError(s.store.LockShipment(s.ctx, sh.ShipmentHash, "0xabc"))
	err := s.store.LockShipment(s.ctx, sh.ShipmentHash, "0xdef")
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	got, err := s.store.FindShipment(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.True(got.IsLocked)
	s.Equal("0xabc", got.TxHash)
}

func (s *PostgresStoreSuite) TestAssignAndListAssigned() {
	sh, _ := s.seedShipment("pg-hash-a", 1)

	transporter := domain.ActorID(uuid.New())
	a := Assignment{Actor: transporter, AssignedAt: time.Now().UTC().Truncate(time.Microsecond)}
	s.Require().NoError(s.store.Assign(s.ctx, sh.ShipmentHash, domain.RoleTransporter, a))

	got, err := s.store.FindShipment(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.Require().NotNil(got.AssignedTransporter)
	s.Equal(transporter, got.AssignedTransporter.Actor)

	assigned, err := s.store.ListAssigned(s.ctx, transporter, domain.RoleTransporter)
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(sh.ShipmentHash, assigned[0].ShipmentHash)

	assigned, err = s.store.ListAssigned(s.ctx, transporter, domain.RoleWarehouse)
	s.Require().NoError(err)
	s.Empty(assigned)
}

func (s *PostgresStoreSuite) TestSetShipmentStatus() {
	sh, _ := s.seedShipment("pg-hash-a", 1)

	s.Require().NoError(s.store.SetShipmentStatus(s.ctx, sh.ShipmentHash, lifecycle.ShipmentInTransit))

	got, err := s.store.FindShipment(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.Equal(lifecycle.ShipmentInTransit, got.Status)
}

func (s *PostgresStoreSuite) TestAddDocument() {
	sh, _ := s.seedShipment("pg-hash-a", 1)

	doc := Document{Name: "invoice.pdf", URI: "s3://docs/invoice.pdf", UploadedAt: time.Now().UTC().Truncate(time.Microsecond)}
	s.Require().NoError(s.store.AddDocument(s.ctx, sh.ShipmentHash, doc))

	got, err := s.store.FindShipment(s.ctx, sh.ShipmentHash)
	s.Require().NoError(err)
	s.Require().Len(got.SupportingDocuments, 1)
	s.Equal("invoice.pdf", got.SupportingDocuments[0].Name)
}
