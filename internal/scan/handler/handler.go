// Package handler exposes the scan verification endpoint. The actor
// identity comes from the auth middleware; the body carries only what the
// device scanned.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cargotrace/internal/scan"
	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/httputil"
	"cargotrace/pkg/requestcontext"
)

type Handler struct {
	service *scan.Service
	logger  *slog.Logger
}

func New(service *scan.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes mounts the scan endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[scanRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	containerID, _ := domain.ParseContainerID(req.ContainerID)

	v, err := h.service.Verify(ctx, scan.VerifyRequest{
		ContainerID: containerID,
		Actor:       requestcontext.ActorID(ctx),
		Role:        requestcontext.ActorRole(ctx),
		Concern:     req.Concern,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "scan verification failed", "container_id", containerID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	// Rejections are 200s with accepted=false: the request itself worked.
	httputil.WriteJSON(w, http.StatusOK, toVerdictResponse(v))
}
