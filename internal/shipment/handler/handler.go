// Package handler exposes shipment operations over HTTP. Routes are mounted
// by the top-level router; authentication middleware has already populated
// the request context by the time these handlers run.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/httputil"
	"cargotrace/pkg/requestcontext"
)

type Handler struct {
	service *shipment.Service
	logger  *slog.Logger
}

func New(service *shipment.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes mounts the shipment endpoints on r. Patterns are flat so sibling
// handlers (progress) can add their own /{shipmentHash} routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/assigned", h.listAssigned)
	r.Get("/{shipmentHash}", h.get)
	r.Post("/{shipmentHash}/lock", h.lock)
	r.Post("/{shipmentHash}/assign", h.assign)
	r.Post("/{shipmentHash}/advance", h.advance)
	r.Post("/{shipmentHash}/documents", h.addDocument)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createShipmentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	sh, containers, err := h.service.Create(ctx, shipment.CreateParams{
		BatchID:            req.BatchID,
		NumberOfContainers: req.NumberOfContainers,
		TotalQuantity:      req.TotalQuantity,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create shipment failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	httputil.WriteJSON(w, http.StatusCreated, toShipmentResponse(sh, containers, audience))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sh, containers, err := h.service.Get(ctx, hash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	httputil.WriteJSON(w, http.StatusOK, toShipmentResponse(sh, containers, audience))
}

func (h *Handler) lock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sh, err := h.service.Lock(ctx, hash)
	if err != nil {
		h.logger.WarnContext(ctx, "lock shipment failed", "shipment_hash", hash, "error", err)
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	httputil.WriteJSON(w, http.StatusOK, toShipmentResponse(sh, nil, audience))
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[assignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	// Validate() already vetted both fields.
	role, _ := domain.ParseRole(req.Role)
	actor, _ := domain.ParseActorID(req.ActorID)

	sh, err := h.service.Assign(ctx, hash, role, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "assign failed", "shipment_hash", hash, "role", role, "error", err)
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	httputil.WriteJSON(w, http.StatusOK, toShipmentResponse(sh, nil, audience))
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[advanceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	containerID, _ := domain.ParseContainerID(req.ContainerID)

	c, err := h.service.Advance(ctx, hash, containerID)
	if err != nil {
		h.logger.WarnContext(ctx, "manual advance failed",
			"shipment_hash", hash,
			"container_id", containerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	httputil.WriteJSON(w, http.StatusOK, toContainerResponse(*c, audience))
}

func (h *Handler) addDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseShipmentHash(chi.URLParam(r, "shipmentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[addDocumentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.AddDocument(ctx, hash, shipment.Document{Name: req.Name, URI: req.URI}); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"status": "attached"})
}

func (h *Handler) listAssigned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shipments, err := h.service.ListAssigned(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audience := audienceFor(requestcontext.ActorRole(ctx))
	out := make([]shipmentResponse, 0, len(shipments))
	for i := range shipments {
		out = append(out, toShipmentResponse(&shipments[i], nil, audience))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"shipments": out})
}
