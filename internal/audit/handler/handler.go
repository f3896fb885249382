// Package handler exposes the admin audit listing.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cargotrace/internal/audit"
	"cargotrace/pkg/platform/httputil"
)

const defaultListLimit = 100

type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Routes mounts the audit endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/events", h.list)
}

type eventResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ActorID      string    `json:"actor_id,omitempty"`
	Role         string    `json:"role,omitempty"`
	Action       string    `json:"action"`
	ShipmentHash string    `json:"shipment_hash,omitempty"`
	ContainerID  string    `json:"container_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Concern      string    `json:"concern,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list audit events failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			ID:           e.ID.String(),
			Timestamp:    e.Timestamp,
			Role:         string(e.Role),
			Action:       e.Action,
			ShipmentHash: e.ShipmentHash.String(),
			ContainerID:  e.ContainerID.String(),
			Reason:       e.Reason,
			Concern:      e.Concern,
		}
		if !e.Actor.IsNil() {
			resp.ActorID = e.Actor.String()
		}
		out = append(out, resp)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}
