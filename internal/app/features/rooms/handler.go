// internal/app/features/rooms/handler.go
package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin room directory. Student-facing room listings
// live with the group workflow, scoped to the group's needs.
type Handler struct {
	DB     *mongo.Database
	ErrLog *apierr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Log: logger}
}

type createRoomPayload struct {
	RoomNumber string  `json:"room_number" validate:"required,max=20"`
	Block      string  `json:"block" validate:"max=40"`
	Floor      int     `json:"floor" validate:"min=0,max=50"`
	Gender     string  `json:"gender" validate:"required,oneof=male female"`
	RoomType   string  `json:"room_type" validate:"required,room_type"`
	TotalPrice float64 `json:"total_price" validate:"min=0"`
}

// HandleCreate registers a room. Admin only.
// POST /api/rooms
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p createRoomPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode create-room payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}
	roomType := inputval.CanonicalRoomType(p.RoomType)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	room, err := roomstore.New(h.DB).Create(ctx, models.Room{
		RoomNumber: strings.TrimSpace(p.RoomNumber),
		Block:      strings.TrimSpace(p.Block),
		Floor:      p.Floor,
		Gender:     strings.ToLower(strings.TrimSpace(p.Gender)),
		RoomType:   roomType,
		Capacity:   models.RoomTypeCapacity(roomType),
		TotalPrice: p.TotalPrice,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create room failed", err, "")
		return
	}

	h.Log.Info("room created",
		zap.String("room_id", room.ID.Hex()),
		zap.String("room_number", room.RoomNumber),
		zap.String("room_type", room.RoomType))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(room)
}

// HandleGet returns one room.
// GET /api/rooms/{roomID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roomID"))
	if err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, "invalid room id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	room, err := roomstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, roomstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, "room not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load room failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(room)
}
