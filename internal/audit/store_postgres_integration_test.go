//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cargotrace/pkg/domain"
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
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "audit_events"))
}

func (s *PostgresStoreSuite) seedEvent(action string, at time.Time) Event {
	event := Event{
		ID:           uuid.New(),
		Timestamp:    at,
		Actor:        domain.ActorID(uuid.New()),
		Role:         domain.RoleTransporter,
		Action:       action,
		ShipmentHash: "SHP-001",
		ContainerID:  "SHP001-C001",
	}
	s.Require().NoError(s.store.Append(s.ctx, event))
	return event
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	s.seedEvent(ActionScanAccepted, base)
	s.seedEvent(ActionScanRejected, base.Add(time.Second))
	newest := s.seedEvent(ActionShipmentAdvanced, base.Add(2*time.Second))

	events, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(newest.ID, events[0].ID)
	s.Equal(ActionShipmentAdvanced, events[0].Action)
	s.Equal(domain.ShipmentHash("SHP-001"), events[0].ShipmentHash)
	s.Equal(domain.ContainerID("SHP001-C001"), events[0].ContainerID)
	s.Equal(ActionScanAccepted, events[2].Action)
}

func (s *PostgresStoreSuite) TestListRecentHonorsLimit() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		s.seedEvent(ActionScanAccepted, base.Add(time.Duration(i)*time.Second))
	}

	events, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentOnID() {
	event := s.seedEvent(ActionScanRejected, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListRecent(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestRejectionReasonAndConcernSurvive() {
	event := Event{
		ID:           uuid.New(),
		Timestamp:    time.Now().UTC().Truncate(time.Microsecond),
		Actor:        domain.ActorID(uuid.New()),
		Role:         domain.RoleWarehouse,
		Action:       ActionScanRejected,
		ShipmentHash: "SHP-002",
		ContainerID:  "SHP002-C001",
		Reason:       "DUPLICATE_SCAN",
		Concern:      "pallet wrap torn",
	}
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListRecent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("DUPLICATE_SCAN", events[0].Reason)
	s.Equal("pallet wrap torn", events[0].Concern)
}
