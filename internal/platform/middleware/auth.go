// Package middleware provides HTTP middleware for authentication and
// role-based access control.
package middleware

import (
	"net/http"
	"strings"

	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/httputil"
	"cargotrace/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns the actor identity it
// carries. Implemented by actor.Service.
type TokenValidator interface {
	ValidateToken(token string) (domain.ActorID, domain.Role, error)
}

// RequireAuth validates the Authorization bearer token and injects the
// actor identity into the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			id, role, err := validator.ValidateToken(token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithActor(r.Context(), id, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only the listed roles past. Must run after
// RequireAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[requestcontext.ActorRole(r.Context())]; !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "role not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
