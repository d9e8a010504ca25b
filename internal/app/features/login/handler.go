// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/htmlsanitize"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
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

type registerPayload struct {
	Name      string `json:"name" validate:"required,max=120"`
	StudentID string `json:"student_id" validate:"required,max=40"`
	Email     string `json:"email" validate:"required,email"`
	Gender    string `json:"gender" validate:"required,oneof=male female"`
	Course    string `json:"course" validate:"max=120"`
	Year      int    `json:"year" validate:"min=0,max=10"`
}

// HandleRegister creates a student account and signs it in.
// POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var p registerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode register payload", err, "Invalid request body.")
		return
	}
	p.Name = htmlsanitize.StripTags(strings.TrimSpace(p.Name))
	p.StudentID = strings.TrimSpace(p.StudentID)
	p.Email = strings.TrimSpace(p.Email)
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))

	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	students := studentstore.New(h.DB)
	st, err := students.Create(ctx, models.Student{
		Name:      p.Name,
		StudentID: p.StudentID,
		Email:     p.Email,
		Gender:    p.Gender,
		Course:    p.Course,
		Year:      p.Year,
	})
	if errors.Is(err, studentstore.ErrDuplicateEmail) {
		h.ErrLog.LogConflict(w, r, "duplicate registration", err, "An account with this email or student id already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create student failed", err, "")
		return
	}

	if err := h.establish(w, r, st); err != nil {
		h.ErrLog.LogServerError(w, r, "establish session failed", err, "")
		return
	}

	h.Log.Info("student registered",
		zap.String("student_id", st.ID.Hex()),
		zap.String("email", st.Email))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(st)
}

type loginPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleLogin signs an existing student in by email.
// POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	students := studentstore.New(h.DB)
	st, err := students.GetByEmail(ctx, p.Email)
	if errors.Is(err, studentstore.ErrNotFound) {
		// Same status as a bad password would get, so the endpoint does not
		// confirm which addresses are registered.
		apierr.WriteJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "")
		return
	}

	if err := h.establish(w, r, st); err != nil {
		h.ErrLog.LogServerError(w, r, "establish session failed", err, "")
		return
	}

	h.Log.Info("student signed in", zap.String("student_id", st.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// HandleLogout clears the session cookie.
// POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "clear session failed", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in student's full record.
// GET /api/auth/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	students := studentstore.New(h.DB)
	st, err := students.GetByID(ctx, id)
	if errors.Is(err, studentstore.ErrNotFound) {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "me lookup failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

func (h *Handler) establish(w http.ResponseWriter, r *http.Request, st models.Student) error {
	return auth.EstablishSession(w, r, &auth.SessionUser{
		ID:     st.ID.Hex(),
		Name:   st.Name,
		Email:  st.Email,
		Role:   st.Role,
		Gender: st.Gender,
	})
}
