// internal/app/features/rooms/routes.go
package rooms

import (
	"github.com/go-chi/chi/v5"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /api/rooms.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/{roomID}", h.HandleGet)

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireRole("admin"))
		ar.Post("/", h.HandleCreate)
	})

	return r
}
