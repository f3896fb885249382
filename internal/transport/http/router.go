// Package http assembles the chi router from the domain handlers.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	actorhandler "cargotrace/internal/actor/handler"
	audithandler "cargotrace/internal/audit/handler"
	"cargotrace/internal/platform/metrics"
	"cargotrace/internal/platform/middleware"
	progresshandler "cargotrace/internal/progress/handler"
	scanhandler "cargotrace/internal/scan/handler"
	shipmenthandler "cargotrace/internal/shipment/handler"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/requestcontext"
)

// Deps carries everything the router mounts.
type Deps struct {
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Actor    *actorhandler.Handler
	Shipment *shipmenthandler.Handler
	Scan     *scanhandler.Handler
	Progress *progresshandler.Handler
	Audit    *audithandler.Handler

	// Health reports readiness of backing services; nil means always ok.
	Health func(r *http.Request) error
}

// New builds the full route tree.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(propagateRequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.Metrics.Middleware("/auth"))
		deps.Actor.Routes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator))

		r.Route("/shipments", func(r chi.Router) {
			r.Use(deps.Metrics.Middleware("/shipments"))
			deps.Shipment.Routes(r)
			deps.Progress.Routes(r)
		})

		r.Route("/scan", func(r chi.Router) {
			r.Use(deps.Metrics.Middleware("/scan"))
			r.Use(middleware.RequireRole(
				domain.RoleTransporter,
				domain.RoleWarehouse,
				domain.RoleRetailer,
			))
			deps.Scan.Routes(r)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(deps.Metrics.Middleware("/audit"))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			deps.Audit.Routes(r)
		})
	})

	return r
}

// propagateRequestID copies chi's request ID into the transport-agnostic
// request context so services can log it without importing chi.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(requestcontext.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
