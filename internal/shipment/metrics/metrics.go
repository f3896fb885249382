// Package metrics exposes Prometheus counters for shipment lifecycle
// operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargotrace_shipments_created_total",
		Help: "Total number of shipments created.",
	})

	ShipmentsLocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargotrace_shipments_locked_total",
		Help: "Total number of shipments locked for dispatch.",
	})

	AssignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargotrace_shipment_assignments_total",
		Help: "Total number of stage assignments, by role.",
	}, []string{"role"})

	ContainersAdvanced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargotrace_containers_advanced_total",
		Help: "Total number of container status advances, by target status.",
	}, []string{"to_status"})
)
