// internal/app/features/roommategroups/routes.go
package roommategroups

import (
	"github.com/go-chi/chi/v5"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /api/roommate-groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/requests", h.HandleSendRequest)
	r.Get("/requests", h.HandleListRequests)
	r.Post("/requests/{requestID}/respond", h.HandleRespond)

	r.Get("/mine", h.HandleMyGroup)
	r.Get("/{groupID}/available-rooms", h.HandleAvailableRooms)
	r.Post("/{groupID}/select-room", h.HandleSelectRoom)
	r.Post("/{groupID}/cancel", h.HandleCancel)

	return r
}
