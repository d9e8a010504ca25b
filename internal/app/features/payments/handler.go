// internal/app/features/payments/handler.go
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Mgr    *lifecycle.Manager
	ErrLog *apierr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, mgr *lifecycle.Manager, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Mgr: mgr, ErrLog: errLog, Log: logger}
}

// HandlePayRoomFee records the signed-in student's room fee payment. When
// this is the last outstanding payment the group's allocation is
// finalized in the same call, and the response says so.
// POST /api/payments/room-fee
func (h *Handler) HandlePayRoomFee(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "record room fee payment")
	defer cancel()

	group, completed, err := h.Mgr.RecordPayment(ctx, studentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Log.Info("room fee recorded",
		zap.String("student_id", studentID.Hex()),
		zap.String("group_id", group.ID.Hex()),
		zap.Bool("group_completed", completed))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"group":           group,
		"group_completed": completed,
	})
}

// HandleStatus reports what the student owes and where the group's
// payments stand.
// GET /api/payments/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
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
		h.ErrLog.LogServerError(w, r, "load payment status failed", err, "")
		return
	}

	resp := map[string]any{
		"payment_status": st.PaymentStatus,
		"amount_to_pay":  st.AmountToPay,
	}

	if group, active, err := groupstore.New(h.DB).ActiveForStudent(ctx, studentID); err == nil && active {
		paid := 0
		for _, m := range group.Members {
			if m.PaymentStatus == models.PaymentPaid {
				paid++
			}
		}
		resp["group_id"] = group.ID.Hex()
		resp["group_status"] = group.Status
		resp["members_paid"] = paid
		resp["members_total"] = len(group.Members)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNoPaymentDue):
		apierr.WriteJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrPaymentAlreadyComplete),
		errors.Is(err, lifecycle.ErrConflict):
		h.ErrLog.LogConflict(w, r, "payment conflict", err, err.Error())
	case errors.Is(err, studentstore.ErrNotFound),
		errors.Is(err, groupstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, "record payment failed", err, "")
	}
}
