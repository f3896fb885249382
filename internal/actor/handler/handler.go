// Package handler exposes authentication endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cargotrace/internal/actor"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/httputil"
	"cargotrace/pkg/requestcontext"
)

type Handler struct {
	service *actor.Service
	logger  *slog.Logger
}

func New(service *actor.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes mounts the auth endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "name, email, and password are required")
	}
	if _, err := domain.ParseRole(r.Role); err != nil {
		return err
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type actorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toActorResponse(a *actor.Actor) actorResponse {
	return actorResponse{
		ID:    a.ID.String(),
		Name:  a.Name,
		Email: a.Email,
		Role:  string(a.Role),
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	a, err := h.service.Register(ctx, actor.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toActorResponse(a))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	token, a, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"actor": toActorResponse(a),
	})
}
