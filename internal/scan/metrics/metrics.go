// Package metrics exposes Prometheus instruments for scan verification.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargotrace_scans_total",
		Help: "Total scan verifications, by result (accepted/rejected).",
	}, []string{"result"})

	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargotrace_scan_rejections_total",
		Help: "Total scan rejections, by reason code.",
	}, []string{"reason"})

	VerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cargotrace_scan_verify_duration_seconds",
		Help:    "Time spent verifying a scan, including store round trips.",
		Buckets: prometheus.DefBuckets,
	})
)
