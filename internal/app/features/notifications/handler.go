// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	notificationstore "github.com/hostelhaven/roomsync/internal/app/store/notifications"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	ErrLog *apierr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Log: logger}
}

// HandleList returns the student's notifications, newest first.
// GET /api/notifications?limit=50
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := notificationstore.New(h.DB).ListForRecipient(ctx, studentID, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "")
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"notifications": items})
}

// HandleMarkRead marks one of the student's notifications read.
// POST /api/notifications/{notificationID}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := notificationstore.New(h.DB).MarkRead(ctx, id, studentID); err != nil {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
