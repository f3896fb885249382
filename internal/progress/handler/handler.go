// Package handler serves the shipment progress endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cargotrace/internal/progress"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/httputil"
	"cargotrace/pkg/requestcontext"
)

type Handler struct {
	service *progress.Service
	logger  *slog.Logger
}

func New(service *progress.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes mounts the progress endpoint on r. Mounted under /shipments
// alongside the shipment handler's routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{shipmentHash}/progress", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Get(ctx, hash, requestcontext.ActorRole(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "progress lookup failed", "shipment_hash", hash, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}
