// internal/app/features/roommategroups/rooms.go
package roommategroups

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleAvailableRooms lists rooms the student's confirmed group could
// take: matching gender and room type, selectable status and enough free
// beds for every member.
// GET /api/roommate-groups/{groupID}/available-rooms
func (h *Handler) HandleAvailableRooms(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := groupstore.New(h.DB).GetByID(ctx, groupID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}
	if group.Member(studentID) == nil {
		apierr.WriteJSON(w, http.StatusForbidden, lifecycle.ErrNotGroupMember.Error())
		return
	}
	if group.Status != models.GroupConfirmed {
		apierr.WriteJSON(w, http.StatusBadRequest, lifecycle.ErrGroupNotConfirmed.Error())
		return
	}

	member, err := studentstore.New(h.DB).GetByID(ctx, studentID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	roomType := group.RoomType
	if roomType == "" {
		roomType = group.RecommendedRoomType()
	}
	rooms, err := roomstore.New(h.DB).AvailableForGroup(ctx, member.Gender, roomType, len(group.Members))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list available rooms failed", err, "")
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"rooms":     rooms,
		"room_type": roomType,
	})
}

type selectRoomPayload struct {
	RoomID string `json:"room_id" validate:"required,objectid"`
}

// HandleSelectRoom is the leader-only confirmed → room_selected
// transition. The room is held for the group and every member owes the
// fee before the allocation becomes permanent.
// POST /api/roommate-groups/{groupID}/select-room
func (h *Handler) HandleSelectRoom(w http.ResponseWriter, r *http.Request) {
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

	var p selectRoomPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode select-room payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}
	roomID, _ := primitive.ObjectIDFromHex(p.RoomID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "select room")
	defer cancel()

	group, err := h.Mgr.SelectRoom(ctx, studentID, groupID, roomID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	h.Log.Info("room selected for group",
		zap.String("group_id", groupID.Hex()),
		zap.String("room_id", roomID.Hex()),
		zap.String("leader_id", studentID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"group": group})
}
