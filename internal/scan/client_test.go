package scan_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/internal/audit"
	"cargotrace/internal/lifecycle"
	"cargotrace/internal/scan"
	scanhandler "cargotrace/internal/scan/handler"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/requestcontext"
)

type dropAuditor struct{}

func (dropAuditor) Emit(context.Context, audit.Event) {}

// newScanServer runs the real handler and service behind httptest, with a
// middleware standing in for JWT auth.
func newScanServer(t *testing.T, store shipment.Store, actor domain.ActorID, role domain.Role) *httptest.Server {
	t.Helper()

	svc := scan.NewService(store, dropAuditor{})
	h := scanhandler.New(svc, slog.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithActor(req.Context(), actor, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/scan", h.Routes)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func seedLockedShipment(t *testing.T, store shipment.Store, transporter domain.ActorID) domain.ContainerID {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	sh := &shipment.Shipment{
		ShipmentHash:       "SHP-001",
		BatchID:            "B",
		Supplier:           domain.ActorID(uuid.New()),
		NumberOfContainers: 1,
		Status:             lifecycle.ShipmentCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	containers := []shipment.Container{{
		ContainerID:     "SHP001-C001",
		ShipmentHash:    "SHP-001",
		ContainerNumber: 1,
		Status:          lifecycle.ContainerCreated,
	}}
	require.NoError(t, store.CreateShipment(ctx, sh, containers))
	require.NoError(t, store.LockShipment(ctx, "SHP-001", "0xanchor"))
	require.NoError(t, store.Assign(ctx, "SHP-001", domain.RoleTransporter, shipment.Assignment{Actor: transporter, AssignedAt: now}))
	return containers[0].ContainerID
}

func TestClientVerifyRoundTrip(t *testing.T) {
	store := shipment.NewInMemory()
	transporter := domain.ActorID(uuid.New())
	containerID := seedLockedShipment(t, store, transporter)
	server := newScanServer(t, store, transporter, domain.RoleTransporter)

	client := scan.NewClient(server.URL, "test-token")

	v, err := client.Verify(context.Background(), scan.VerifyRequest{
		ContainerID: containerID,
		Concern:     "seal looks worn",
	})
	require.NoError(t, err)
	require.True(t, v.Accepted)
	assert.Equal(t, lifecycle.ContainerInTransit, v.Container.CurrentStatus)
	assert.Equal(t, 1, v.Shipment.ScannedCount)
	assert.True(t, v.Shipment.AllComplete)
	assert.Equal(t, "seal looks worn", v.Concern)

	// Rejections round-trip with their reason intact.
	v, err = client.Verify(context.Background(), scan.VerifyRequest{ContainerID: containerID})
	require.NoError(t, err)
	require.False(t, v.Accepted)
	assert.Equal(t, lifecycle.ReasonAlreadyAtOrPast, v.Reason)
	assert.Equal(t, lifecycle.ReasonAlreadyAtOrPast.Message(), v.Message)
}

func TestClientTransportFailure(t *testing.T) {
	store := shipment.NewInMemory()
	transporter := domain.ActorID(uuid.New())
	containerID := seedLockedShipment(t, store, transporter)
	server := newScanServer(t, store, transporter, domain.RoleTransporter)
	server.Close()

	client := scan.NewClient(server.URL, "test-token")
	_, err := client.Verify(context.Background(), scan.VerifyRequest{ContainerID: containerID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

// TestPipelineAgainstRealServer drives the client pipeline end to end: the
// device scans, the server verifies, the history and counters update.
func TestPipelineAgainstRealServer(t *testing.T) {
	store := shipment.NewInMemory()
	transporter := domain.ActorID(uuid.New())
	containerID := seedLockedShipment(t, store, transporter)
	server := newScanServer(t, store, transporter, domain.RoleTransporter)

	p := scan.NewPipeline(scan.NewClient(server.URL, "test-token"))
	require.NoError(t, p.StartScanning())

	v, err := p.Submit(context.Background(), containerID.String())
	require.NoError(t, err)
	require.True(t, v.Accepted)
	assert.Equal(t, scan.StateSuccess, p.State())
	assert.True(t, p.Progress().AllComplete)
	require.Len(t, p.History(), 1)
}
