// internal/app/features/preferences/routes.go
package preferences

import (
	"github.com/go-chi/chi/v5"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /api/preferences.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.HandleGet)
	r.Put("/", h.HandleUpdate)
	r.Put("/room-type", h.HandleSetRoomType)
	return r
}
