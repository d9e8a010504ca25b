// internal/app/features/matching/routes.go
package matching

import (
	"github.com/go-chi/chi/v5"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /api/matching.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/individuals", h.HandleIndividuals)
	r.Get("/groups", h.HandleGroups)
	return r
}
