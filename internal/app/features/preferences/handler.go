// internal/app/features/preferences/handler.go
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"github.com/hostelhaven/roomsync/internal/domain/models"
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

// HandleGet returns the student's stored questionnaire answers.
// GET /api/preferences
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := studentstore.New(h.DB).GetByID(ctx, studentID)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, "student not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load preferences failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"preferences":        st.AIPreferences,
		"matching_opt_in":    st.MatchingOptIn,
		"selected_room_type": st.SelectedRoomType,
	})
}

type preferencesPayload struct {
	SleepSchedule  string `json:"sleep_schedule" validate:"required,max=60"`
	Cleanliness    int    `json:"cleanliness" validate:"required,min=1,max=10"`
	StudyHabits    string `json:"study_habits" validate:"required,max=60"`
	NoiseTolerance int    `json:"noise_tolerance" validate:"required,min=1,max=10"`
	Lifestyle      string `json:"lifestyle" validate:"required,max=60"`
}

// HandleUpdate stores the questionnaire answers and opts the student into
// matching.
// PUT /api/preferences
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var p preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode preferences payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}

	prefs := models.Preferences{
		SleepSchedule:  strings.ToLower(strings.TrimSpace(p.SleepSchedule)),
		Cleanliness:    p.Cleanliness,
		StudyHabits:    strings.ToLower(strings.TrimSpace(p.StudyHabits)),
		NoiseTolerance: p.NoiseTolerance,
		Lifestyle:      strings.ToLower(strings.TrimSpace(p.Lifestyle)),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := studentstore.New(h.DB).SetPreferences(ctx, studentID, prefs)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, "student not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "save preferences failed", err, "")
		return
	}

	h.Log.Info("preferences updated", zap.String("student_id", studentID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"preferences":     prefs,
		"matching_opt_in": true,
	})
}

type roomTypePayload struct {
	RoomType string `json:"room_type" validate:"required,room_type"`
}

// HandleSetRoomType records the student's target room type. Single rooms
// are a valid target here; they simply make the student ineligible for
// group matching.
// PUT /api/preferences/room-type
func (h *Handler) HandleSetRoomType(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var p roomTypePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode room type payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}
	roomType := inputval.CanonicalRoomType(p.RoomType)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := studentstore.New(h.DB).SetRoomType(ctx, studentID, roomType)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, "student not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "save room type failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"selected_room_type": roomType})
}
