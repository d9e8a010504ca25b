// internal/app/features/roommategroups/respond.go
package roommategroups

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type respondPayload struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

// HandleRespond resolves a pending request for its recipient. Accepting
// may confirm the group; rejecting closes it.
// POST /api/roommate-groups/requests/{requestID}/respond
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	responderID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rawID := chi.URLParam(r, "requestID")
	requestID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var p respondPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode respond payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}
	action := strings.ToLower(strings.TrimSpace(p.Action))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "respond to group request")
	defer cancel()

	group, err := h.Mgr.RespondToRequest(ctx, responderID, requestID, action)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	h.Log.Info("roommate request resolved",
		zap.String("request_id", requestID.Hex()),
		zap.String("responder_id", responderID.Hex()),
		zap.String("action", action),
		zap.String("group_status", group.Status))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"group": group})
}
