// internal/app/features/roommategroups/handler.go
package roommategroups

import (
	"errors"
	"net/http"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
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

// writeLifecycleError maps the state machine's sentinels onto HTTP
// statuses: validation failures are 400, permission checks 403, missing
// documents 404 and lost races or duplicates 409.
func (h *Handler) writeLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrGenderMismatch),
		errors.Is(err, lifecycle.ErrRoomTypeNotSet),
		errors.Is(err, lifecycle.ErrSingleRoomNoGroups),
		errors.Is(err, lifecycle.ErrInvalidAction),
		errors.Is(err, lifecycle.ErrGroupNotConfirmed),
		errors.Is(err, lifecycle.ErrRoomTypeMismatch),
		errors.Is(err, lifecycle.ErrRoomUnavailable),
		errors.Is(err, lifecycle.ErrRoomCapacityMismatch),
		errors.Is(err, lifecycle.ErrNoPaymentDue),
		errors.Is(err, lifecycle.ErrGroupNotFullyPaid):
		apierr.WriteJSON(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, lifecycle.ErrNotRecipient),
		errors.Is(err, lifecycle.ErrNotGroupLeader),
		errors.Is(err, lifecycle.ErrNotGroupMember):
		apierr.WriteJSON(w, http.StatusForbidden, err.Error())

	case errors.Is(err, studentstore.ErrNotFound),
		errors.Is(err, groupstore.ErrNotFound),
		errors.Is(err, requeststore.ErrNotFound),
		errors.Is(err, roomstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, err.Error())

	case errors.Is(err, lifecycle.ErrAlreadyInGroup),
		errors.Is(err, lifecycle.ErrRecipientInGroup),
		errors.Is(err, lifecycle.ErrAlreadyAllocated),
		errors.Is(err, lifecycle.ErrRecipientAllocated),
		errors.Is(err, lifecycle.ErrDuplicateResponse),
		errors.Is(err, lifecycle.ErrPaymentAlreadyComplete),
		errors.Is(err, lifecycle.ErrConflict),
		errors.Is(err, requeststore.ErrDuplicateRequest),
		errors.Is(err, requeststore.ErrAlreadyResponded):
		h.ErrLog.LogConflict(w, r, "group transition conflict", err, err.Error())

	default:
		h.ErrLog.LogServerError(w, r, "group operation failed", err, "")
	}
}
