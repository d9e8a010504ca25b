// internal/app/features/roommategroups/group.go
package roommategroups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/htmlsanitize"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleMyGroup returns the signed-in student's active group, if any.
// GET /api/roommate-groups/mine
func (h *Handler) HandleMyGroup(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, active, err := groupstore.New(h.DB).ActiveForStudent(ctx, studentID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load active group failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !active {
		_ = json.NewEncoder(w).Encode(map[string]any{"group": nil})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"group": group})
}

type cancelPayload struct {
	Reason string `json:"reason" validate:"max=300"`
}

// HandleCancel cancels a non-terminal group on behalf of one of its
// members (or an admin) and releases every hold it had.
// POST /api/roommate-groups/{groupID}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var p cancelPayload
	if r.Body != nil {
		// Body is optional for cancels.
		_ = json.NewDecoder(r.Body).Decode(&p)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "cancel group")
	defer cancel()

	actor, err := studentstore.New(h.DB).GetByID(ctx, studentID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	group, err := h.Mgr.Cancel(ctx, actor, groupID, htmlsanitize.StripTags(strings.TrimSpace(p.Reason)))
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	h.Log.Info("roommate group cancelled",
		zap.String("group_id", groupID.Hex()),
		zap.String("actor_id", studentID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"group": group})
}
