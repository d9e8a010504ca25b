// internal/app/features/roommategroups/requests.go
package roommategroups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apierr "github.com/hostelhaven/roomsync/internal/app/features/errors"
	"github.com/hostelhaven/roomsync/internal/app/match"
	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/htmlsanitize"
	"github.com/hostelhaven/roomsync/internal/app/system/inputval"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
	"github.com/hostelhaven/roomsync/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type sendRequestPayload struct {
	RecipientID string `json:"recipient_id" validate:"required,objectid"`
	Message     string `json:"message" validate:"max=500"`
	AIMatched   bool   `json:"ai_matched"`
	// MinScore marks the request below-threshold when the live pairwise
	// score falls under it. Zero means no floor was in play.
	MinScore int `json:"min_score" validate:"min=0,max=100"`
}

// HandleSendRequest founds a two-member pending group and delivers the
// request. The compatibility score is computed server-side from both
// students' current preferences, never trusted from the client.
// POST /api/roommate-groups/requests
func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var p sendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode send-request payload", err, "Invalid request body.")
		return
	}
	if res := inputval.Validate(p); res.HasErrors() {
		apierr.WriteJSON(w, http.StatusBadRequest, res.First())
		return
	}
	recipientID, _ := primitive.ObjectIDFromHex(strings.TrimSpace(p.RecipientID))
	if recipientID == requesterID {
		apierr.WriteJSON(w, http.StatusBadRequest, "cannot send a roommate request to yourself")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "send group request")
	defer cancel()

	students := studentstore.New(h.DB)
	requester, err := students.GetByID(ctx, requesterID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}
	recipient, err := students.GetByID(ctx, recipientID)
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	score := match.Score(requester.AIPreferences, recipient.AIPreferences)

	group, req, err := h.Mgr.SendGroupRequest(ctx, lifecycle.SendRequestInput{
		RequesterID:    requesterID,
		RecipientID:    recipientID,
		Message:        htmlsanitize.StripTags(strings.TrimSpace(p.Message)),
		Score:          score,
		BelowThreshold: p.MinScore > 0 && score < p.MinScore,
		AIMatched:      p.AIMatched,
	})
	if err != nil {
		h.writeLifecycleError(w, r, err)
		return
	}

	h.Log.Info("roommate request sent",
		zap.String("group_id", group.ID.Hex()),
		zap.String("requester_id", requesterID.Hex()),
		zap.String("recipient_id", recipientID.Hex()),
		zap.Int("score", score))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"group":   group,
		"request": req,
	})
}

// HandleListRequests returns the signed-in student's pending inbox.
// GET /api/roommate-groups/requests
func (h *Handler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.CurrentStudentID(r)
	if !ok {
		apierr.WriteJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := requeststore.New(h.DB).PendingForRecipient(ctx, studentID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending requests failed", err, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"requests": reqs})
}
