// internal/app/features/payments/routes.go
package payments

import (
	"github.com/go-chi/chi/v5"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
)

// Routes returns the subrouter mounted under /api/payments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/room-fee", h.HandlePayRoomFee)
	r.Get("/status", h.HandleStatus)
	return r
}
