package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/pkg/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ContainerStatus
		role    domain.Role
		locked  bool
		reason  RejectionReason // "" means allowed
	}{
		{
			name:    "transporter advances created container",
			current: ContainerCreated,
			role:    domain.RoleTransporter,
			locked:  true,
		},
		{
			name:    "warehouse receives in-transit container",
			current: ContainerInTransit,
			role:    domain.RoleWarehouse,
			locked:  true,
		},
		{
			name:    "retailer confirms at-warehouse container",
			current: ContainerAtWarehouse,
			role:    domain.RoleRetailer,
			locked:  true,
		},
		{
			name:    "unlocked shipment rejects every scan",
			current: ContainerCreated,
			role:    domain.RoleTransporter,
			locked:  false,
			reason:  ReasonShipmentNotLocked,
		},
		{
			name:    "supplier has no scanning stage",
			current: ContainerCreated,
			role:    domain.RoleSupplier,
			locked:  true,
			reason:  ReasonWrongActorRole,
		},
		{
			name:    "repeat scan at same stage is at-or-past",
			current: ContainerInTransit,
			role:    domain.RoleTransporter,
			locked:  true,
			reason:  ReasonAlreadyAtOrPast,
		},
		{
			name:    "scan behind the container's progress is at-or-past",
			current: ContainerDelivered,
			role:    domain.RoleWarehouse,
			locked:  true,
			reason:  ReasonAlreadyAtOrPast,
		},
		{
			name:    "retailer cannot skip a created container to delivered",
			current: ContainerCreated,
			role:    domain.RoleRetailer,
			locked:  true,
			reason:  ReasonWrongActorRole,
		},
		{
			name:    "warehouse cannot receive a container never dispatched",
			current: ContainerCreated,
			role:    domain.RoleWarehouse,
			locked:  true,
			reason:  ReasonWrongActorRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := CanTransition(tt.current, tt.role, tt.locked)
			if tt.reason == "" {
				assert.Nil(t, rej)
				return
			}
			require.NotNil(t, rej)
			assert.Equal(t, tt.reason, rej.Reason)
		})
	}
}

// TestCanTransition_NeverAcceptsAtOrPast sweeps every status/role pair where
// the container already reached the role's target and asserts none are
// accepted.
func TestCanTransition_NeverAcceptsAtOrPast(t *testing.T) {
	statuses := []ContainerStatus{ContainerCreated, ContainerInTransit, ContainerAtWarehouse, ContainerDelivered}
	roles := []domain.Role{domain.RoleTransporter, domain.RoleWarehouse, domain.RoleRetailer}

	for _, role := range roles {
		target, ok := TargetStatus(role)
		require.True(t, ok)
		for _, status := range statuses {
			if Rank(status) < Rank(target) {
				continue
			}
			rej := CanTransition(status, role, true)
			require.NotNil(t, rej, "role %s on %s must be rejected", role, status)
			assert.Equal(t, ReasonAlreadyAtOrPast, rej.Reason)
		}
	}
}

func TestRejection_Message(t *testing.T) {
	rej := Reject(ReasonShipmentNotLocked)
	assert.Contains(t, rej.Error(), "SHIPMENT_NOT_LOCKED")
	assert.NotEmpty(t, ReasonDuplicateScan.Message())
	assert.Equal(t, "scan rejected", RejectionReason("SOMETHING_NEW").Message())
}
