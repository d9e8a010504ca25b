// internal/app/features/matching/handler.go
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/match"
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
	Engine match.Engine
	// MinScore is the compatibility floor candidates must clear before the
	// engine falls back to a flagged top-K list.
	MinScore int
	ErrLog   *apierr.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, engine match.Engine, minScore int, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Engine: engine, MinScore: minScore, ErrLog: errLog, Log: logger}
}

// HandleIndividuals returns scored roommate candidates for the signed-in
// student. Pass ?room_type= to score against a type other than the one on
// file (the engine rejects a mismatch).
// GET /api/matching/individuals
func (h *Handler) HandleIndividuals(w http.ResponseWriter, r *http.Request) {
	target, pool, ok := h.loadPool(w, r)
	if !ok {
		return
	}

	candidates, err := h.Engine.FindIndividualMatches(target, pool, h.minScore(r), requestedRoomType(r, target))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []match.Candidate{}
	}

	h.Log.Info("individual matches computed",
		zap.String("student_id", target.ID.Hex()),
		zap.Int("pool", len(pool)),
		zap.Int("candidates", len(candidates)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"matches": candidates})
}

// HandleGroups returns greedy group proposals sized to the student's
// selected room type.
// GET /api/matching/groups
func (h *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	target, pool, ok := h.loadPool(w, r)
	if !ok {
		return
	}

	proposals, err := h.Engine.FindGroups(target, pool, h.minScore(r), requestedRoomType(r, target))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []match.GroupProposal{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"groups": proposals})
}

// loadPool resolves the signed-in student and their eligible pool. On
// failure it has already written the response.
func (h *Handler) loadPool(w http.ResponseWriter, r *http.Request) (models.Student, []models.Student, bool) {
	var zero models.Student

	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return zero, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	students := studentstore.New(h.DB)
	target, err := students.GetByID(ctx, studentID)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, "student not found")
		return zero, nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student failed", err, "")
		return zero, nil, false
	}

	pool, err := students.EligiblePool(ctx, target.ID, target.Gender, target.SelectedRoomType)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load matching pool failed", err, "")
		return zero, nil, false
	}
	return target, pool, true
}

// requestedRoomType defaults to the room type the student has on file.
func requestedRoomType(r *http.Request, target models.Student) string {
	if v := r.URL.Query().Get("room_type"); v != "" {
		return inputval.CanonicalRoomType(v)
	}
	return target.SelectedRoomType
}

// minScore honors a ?min_score= override within the 0-100 range.
func (h *Handler) minScore(r *http.Request) int {
	if v := r.URL.Query().Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 100 {
			return n
		}
	}
	return h.MinScore
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, match.ErrRoomTypeNotSet),
		errors.Is(err, match.ErrSingleRoomNoMatching),
		errors.Is(err, match.ErrRoomTypeMismatch),
		errors.Is(err, match.ErrPreferencesNotSet):
		apierr.WriteJSON(w, http.StatusBadRequest, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, "matching failed", err, "")
	}
}
