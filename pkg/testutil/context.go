package testutil

import (
	"net/http"

	"cargotrace/pkg/domain"
	"cargotrace/pkg/requestcontext"
)

// WithActor injects an authenticated actor into the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithActor(req *http.Request, actorID domain.ActorID, role domain.Role) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), actorID, role)
	return req.WithContext(ctx)
}
