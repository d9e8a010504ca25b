// internal/app/system/lifecycle/manager.go

// Package lifecycle drives a roommate group from proposal through member
// consent, room selection and payment-gated finalization.
//
// The manager holds no state of its own: every transition is delegated to
// the stores as a conditional update, so correctness does not depend on
// in-process locking and concurrent requests on the same group resolve to
// exactly one winner. Notifications are post-transition and best-effort; a
// failed dispatch is logged and never rolls a transition back.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupStore is the slice of the groups store the state machine needs.
// The Mongo implementation backs production; tests use in-memory fakes.
type GroupStore interface {
	Create(ctx context.Context, g models.RoommateGroup) (models.RoommateGroup, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.RoommateGroup, error)
	ActiveForStudent(ctx context.Context, studentID primitive.ObjectID) (models.RoommateGroup, bool, error)
	MarkMemberAccepted(ctx context.Context, groupID, studentID primitive.ObjectID) (models.RoommateGroup, error)
	ConfirmIfAllAccepted(ctx context.Context, groupID primitive.ObjectID) (bool, error)
	SetRoomSelected(ctx context.Context, groupID, roomID primitive.ObjectID) (models.RoommateGroup, error)
	MarkMemberPaid(ctx context.Context, groupID, studentID primitive.ObjectID, paymentRef string) (models.RoommateGroup, error)
	AdvanceToPaymentPending(ctx context.Context, groupID primitive.ObjectID) error
	Complete(ctx context.Context, groupID primitive.ObjectID, version int64) (bool, error)
	Terminate(ctx context.Context, groupID primitive.ObjectID, toStatus, reason string) (models.RoommateGroup, error)
}

type StudentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error)
	SetActiveGroup(ctx context.Context, id, groupID primitive.ObjectID) (bool, error)
	ClearActiveGroup(ctx context.Context, ids []primitive.ObjectID, groupID primitive.ObjectID) error
	HoldTemporaryRoom(ctx context.Context, ids []primitive.ObjectID, roomID primitive.ObjectID, amount float64) error
	MarkPaid(ctx context.Context, id primitive.ObjectID) error
	FinalizeRoom(ctx context.Context, ids []primitive.ObjectID, roomID primitive.ObjectID) error
	ReleaseTemporaryRoom(ctx context.Context, ids []primitive.ObjectID) error
}

type RoomStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Room, error)
	Reserve(ctx context.Context, id primitive.ObjectID) error
	Unreserve(ctx context.Context, id primitive.ObjectID) error
	Allocate(ctx context.Context, id primitive.ObjectID, n int) error
	Release(ctx context.Context, id primitive.ObjectID, n int) error
}

type RequestStore interface {
	Create(ctx context.Context, r models.RoommateRequest) (models.RoommateRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.RoommateRequest, error)
	PendingBetween(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	MarkResponded(ctx context.Context, id primitive.ObjectID, status string) (models.RoommateRequest, error)
	CancelOpenForGroup(ctx context.Context, groupID primitive.ObjectID) error
}

// Notifier records an in-app notification. Failures are the caller's to
// log; the manager never propagates them.
type Notifier interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, title, message, typ string) error
}

// Manager is the group lifecycle state machine.
type Manager struct {
	groups   GroupStore
	students StudentStore
	rooms    RoomStore
	requests RequestStore
	notifier Notifier
	log      *zap.Logger
}

func NewManager(groups GroupStore, students StudentStore, rooms RoomStore, requests RequestStore, notifier Notifier, log *zap.Logger) *Manager {
	return &Manager{
		groups:   groups,
		students: students,
		rooms:    rooms,
		requests: requests,
		notifier: notifier,
		log:      log,
	}
}

// SendRequestInput carries the optional matching metadata along with the
// founding request.
type SendRequestInput struct {
	RequesterID    primitive.ObjectID
	RecipientID    primitive.ObjectID
	Message        string
	Score          int
	BelowThreshold bool
	AIMatched      bool
}

// SendGroupRequest founds a pending group: the requester (accepted
// implicitly) plus the recipient (awaiting response). Both students' active
// group references are claimed; if either claim loses a race the group is
// torn down again and nothing is left behind.
func (m *Manager) SendGroupRequest(ctx context.Context, in SendRequestInput) (models.RoommateGroup, models.RoommateRequest, error) {
	var zeroG models.RoommateGroup
	var zeroR models.RoommateRequest

	requester, err := m.students.GetByID(ctx, in.RequesterID)
	if err != nil {
		return zeroG, zeroR, err
	}
	recipient, err := m.students.GetByID(ctx, in.RecipientID)
	if err != nil {
		return zeroG, zeroR, err
	}

	switch {
	case requester.Gender != recipient.Gender:
		return zeroG, zeroR, ErrGenderMismatch
	case requester.Allocated():
		return zeroG, zeroR, ErrAlreadyAllocated
	case recipient.Allocated():
		return zeroG, zeroR, ErrRecipientAllocated
	case requester.SelectedRoomType == "":
		return zeroG, zeroR, ErrRoomTypeNotSet
	case requester.SelectedRoomType == models.RoomTypeSingle:
		return zeroG, zeroR, ErrSingleRoomNoGroups
	}

	if _, active, err := m.groups.ActiveForStudent(ctx, requester.ID); err != nil {
		return zeroG, zeroR, err
	} else if active {
		return zeroG, zeroR, ErrAlreadyInGroup
	}
	if _, active, err := m.groups.ActiveForStudent(ctx, recipient.ID); err != nil {
		return zeroG, zeroR, err
	} else if active {
		return zeroG, zeroR, ErrRecipientInGroup
	}
	if dup, err := m.requests.PendingBetween(ctx, requester.ID, recipient.ID); err != nil {
		return zeroG, zeroR, err
	} else if dup {
		return zeroG, zeroR, requeststore.ErrDuplicateRequest
	}

	formation := models.FormationManual
	if in.AIMatched {
		formation = models.FormationAIMatched
	}
	group, err := m.groups.Create(ctx, models.RoommateGroup{
		CreatedBy: requester.ID,
		Members: []models.GroupMember{
			{StudentID: requester.ID, Accepted: true, PaymentStatus: models.PaymentNotStarted},
			{StudentID: recipient.ID, Accepted: false, PaymentStatus: models.PaymentNotStarted},
		},
		RoomType:        requester.SelectedRoomType,
		AverageScore:    in.Score,
		FormationMethod: formation,
	})
	if err != nil {
		return zeroG, zeroR, err
	}

	req, err := m.requests.Create(ctx, models.RoommateRequest{
		GroupID:        group.ID,
		RequesterID:    requester.ID,
		RecipientID:    recipient.ID,
		Message:        in.Message,
		Score:          in.Score,
		BelowThreshold: in.BelowThreshold,
	})
	if err != nil {
		m.teardown(ctx, group, "founding request could not be created", nil)
		return zeroG, zeroR, err
	}

	// Claim both students. The nil-reference guard on SetActiveGroup is
	// what makes "at most one active group" hold under concurrent sends.
	for _, id := range []primitive.ObjectID{requester.ID, recipient.ID} {
		ok, err := m.students.SetActiveGroup(ctx, id, group.ID)
		if err == nil && !ok {
			err = ErrAlreadyInGroup
			if id == recipient.ID {
				err = ErrRecipientInGroup
			}
		}
		if err != nil {
			m.teardown(ctx, group, "a member joined another group first", &req.ID)
			return zeroG, zeroR, err
		}
	}

	m.notify(ctx, recipient.ID, "New Roommate Group Request",
		fmt.Sprintf("%s (%s) wants to form a roommate group with you", requester.Name, requester.StudentID),
		models.NotifyRoommate)

	return group, req, nil
}

// RespondToRequest resolves a pending request. Accepting marks the member
// accepted and confirms the group iff a fresh conditional read shows every
// member accepted; rejecting closes the group and frees everyone in it.
func (m *Manager) RespondToRequest(ctx context.Context, responderID, requestID primitive.ObjectID, action string) (models.RoommateGroup, error) {
	var zero models.RoommateGroup

	if action != "accept" && action != "reject" {
		return zero, ErrInvalidAction
	}
	req, err := m.requests.GetByID(ctx, requestID)
	if err != nil {
		return zero, err
	}
	if req.RecipientID != responderID {
		return zero, ErrNotRecipient
	}

	if action == "reject" {
		if _, err := m.requests.MarkResponded(ctx, requestID, models.RequestRejected); err != nil {
			if errors.Is(err, requeststore.ErrAlreadyResponded) {
				return zero, ErrDuplicateResponse
			}
			return zero, err
		}
		group, err := m.groups.Terminate(ctx, req.GroupID, models.GroupRejected, "request rejected by recipient")
		if err != nil && !errors.Is(err, groupstore.ErrConflict) {
			return zero, err
		}
		if err == nil {
			m.release(ctx, group)
			m.notify(ctx, req.RequesterID, "Roommate Group Request Rejected",
				"Your roommate group request was rejected", models.NotifyRoommate)
		}
		return m.groups.GetByID(ctx, req.GroupID)
	}

	if _, err := m.requests.MarkResponded(ctx, requestID, models.RequestAccepted); err != nil {
		if errors.Is(err, requeststore.ErrAlreadyResponded) {
			return zero, ErrDuplicateResponse
		}
		return zero, err
	}

	group, err := m.groups.MarkMemberAccepted(ctx, req.GroupID, responderID)
	if errors.Is(err, groupstore.ErrConflict) {
		// Classify: the member may already be accepted (duplicate), or the
		// group may have closed underneath us.
		fresh, gerr := m.groups.GetByID(ctx, req.GroupID)
		if gerr != nil {
			return zero, gerr
		}
		if mem := fresh.Member(responderID); mem != nil && mem.Accepted {
			return zero, ErrDuplicateResponse
		}
		return zero, ErrConflict
	}
	if err != nil {
		return zero, err
	}

	confirmed, err := m.groups.ConfirmIfAllAccepted(ctx, group.ID)
	if err != nil {
		return zero, err
	}
	if confirmed {
		for _, id := range group.MemberIDs() {
			m.notify(ctx, id, "Roommate Group Confirmed",
				"All members accepted. The group leader can now select a room.",
				models.NotifyRoommate)
		}
	}
	return m.groups.GetByID(ctx, group.ID)
}

// SelectRoom is the leader-only transition confirmed → room_selected. The
// room is revalidated from a fresh read at call time, the group's beds are
// claimed against the room's occupancy, and the hold is placed on every
// member with each member told to pay. Claiming occupancy here rather than
// at finalize is what keeps a fully-held room out of every other group's
// availability listing while payments are in flight.
func (m *Manager) SelectRoom(ctx context.Context, leaderID, groupID, roomID primitive.ObjectID) (models.RoommateGroup, error) {
	var zero models.RoommateGroup

	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if !group.IsLeader(leaderID) {
		return zero, ErrNotGroupLeader
	}
	if group.Status != models.GroupConfirmed {
		return zero, ErrGroupNotConfirmed
	}

	leader, err := m.students.GetByID(ctx, leaderID)
	if err != nil {
		return zero, err
	}
	room, err := m.rooms.GetByID(ctx, roomID)
	if err != nil {
		return zero, err
	}
	switch {
	case group.RoomType != "" && room.RoomType != group.RoomType:
		return zero, ErrRoomTypeMismatch
	case room.Gender != leader.Gender:
		return zero, ErrRoomTypeMismatch
	case !room.Selectable():
		return zero, ErrRoomUnavailable
	case room.FreeCapacity() < len(group.Members):
		return zero, ErrRoomCapacityMismatch
	}

	// Claim the beds before touching the group. The guarded increment is
	// the authoritative capacity check: two groups racing for the same
	// beds resolve here, not at the read above.
	n := len(group.Members)
	if err := m.rooms.Allocate(ctx, roomID, n); err != nil {
		if errors.Is(err, roomstore.ErrRoomFull) {
			return zero, ErrRoomCapacityMismatch
		}
		return zero, err
	}

	group, err = m.groups.SetRoomSelected(ctx, groupID, roomID)
	if err != nil {
		m.giveBack(ctx, roomID, n)
		if errors.Is(err, groupstore.ErrConflict) {
			return zero, ErrConflict
		}
		return zero, err
	}

	if err := m.rooms.Reserve(ctx, roomID); err != nil {
		m.log.Warn("room reserve failed after selection", zap.Error(err),
			zap.String("group_id", groupID.Hex()), zap.String("room_id", roomID.Hex()))
	}
	if err := m.students.HoldTemporaryRoom(ctx, group.MemberIDs(), roomID, room.TotalPrice); err != nil {
		return zero, err
	}

	for _, id := range group.MemberIDs() {
		m.notify(ctx, id, "Room Selected - Payment Required",
			fmt.Sprintf("Room %s has been selected for your %d-member group. Each member must pay %.2f individually before the room is confirmed.",
				room.RoomNumber, len(group.Members), room.TotalPrice),
			models.NotifyPayment)
	}
	return group, nil
}

// RecordPayment marks the student's room fee paid and tries to finalize.
// The returned bool reports whether this payment completed the group.
func (m *Manager) RecordPayment(ctx context.Context, studentID primitive.ObjectID) (models.RoommateGroup, bool, error) {
	var zero models.RoommateGroup

	group, active, err := m.groups.ActiveForStudent(ctx, studentID)
	if err != nil {
		return zero, false, err
	}
	if !active || (group.Status != models.GroupRoomSelected && group.Status != models.GroupPaymentPending) {
		return zero, false, ErrNoPaymentDue
	}

	if err := m.students.MarkPaid(ctx, studentID); err != nil {
		switch {
		case errors.Is(err, studentstore.ErrPaymentAlreadyComplete):
			return zero, false, ErrPaymentAlreadyComplete
		case errors.Is(err, studentstore.ErrPaymentNotDue):
			return zero, false, ErrNoPaymentDue
		}
		return zero, false, err
	}

	paymentRef := uuid.NewString()
	group, err = m.groups.MarkMemberPaid(ctx, group.ID, studentID, paymentRef)
	if errors.Is(err, groupstore.ErrConflict) {
		return zero, false, ErrConflict
	}
	if err != nil {
		return zero, false, err
	}

	if group.Status == models.GroupRoomSelected {
		if err := m.groups.AdvanceToPaymentPending(ctx, group.ID); err != nil {
			return zero, false, err
		}
	}

	if err := m.TryFinalize(ctx, group.ID); err != nil {
		if errors.Is(err, ErrGroupNotFullyPaid) {
			// Expected until the last member pays.
			fresh, gerr := m.groups.GetByID(ctx, group.ID)
			if gerr != nil {
				return zero, false, gerr
			}
			return fresh, false, nil
		}
		return zero, false, err
	}

	fresh, err := m.groups.GetByID(ctx, group.ID)
	if err != nil {
		return zero, false, err
	}
	return fresh, fresh.Status == models.GroupCompleted, nil
}

// TryFinalize completes the group once every member has paid. The beds were
// already claimed at selection time, so completion is a version-guarded
// status flip followed by the members' permanent room write. Idempotent: a
// finalize trigger that finds the group already completed re-applies the
// member write, so members stranded with only the temporary reference by an
// interrupted finalizer converge on retry instead of staying stuck.
func (m *Manager) TryFinalize(ctx context.Context, groupID primitive.ObjectID) error {
	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status == models.GroupCompleted {
		return m.settleMembers(ctx, group)
	}
	if group.Status != models.GroupRoomSelected && group.Status != models.GroupPaymentPending {
		return ErrConflict
	}
	if !group.AllPaid() {
		return ErrGroupNotFullyPaid
	}
	if group.SelectedRoomID == nil {
		return ErrConflict
	}
	roomID := *group.SelectedRoomID
	n := len(group.Members)

	won, err := m.groups.Complete(ctx, groupID, group.Version)
	if err != nil {
		return err
	}
	if !won {
		// Another finalizer moved the group first.
		fresh, err := m.groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if fresh.Status == models.GroupCompleted {
			return m.settleMembers(ctx, fresh)
		}
		return ErrConflict
	}

	if err := m.students.FinalizeRoom(ctx, group.MemberIDs(), roomID); err != nil {
		return err
	}
	for _, id := range group.MemberIDs() {
		m.notify(ctx, id, "Room Allocation Confirmed",
			fmt.Sprintf("All %d group members have completed payment. The room is now officially yours.", n),
			models.NotifyRoom)
	}
	m.log.Info("roommate group finalized",
		zap.String("group_id", groupID.Hex()),
		zap.String("room_id", roomID.Hex()),
		zap.Int("members", n))
	return nil
}

// settleMembers re-applies the permanent room write for a completed group.
// FinalizeRoom sets the same values on every member, so a repeat leaves
// settled members unchanged while repairing any an interrupted finalizer
// left holding only the temporary reference.
func (m *Manager) settleMembers(ctx context.Context, group models.RoommateGroup) error {
	if group.SelectedRoomID == nil {
		return nil
	}
	return m.students.FinalizeRoom(ctx, group.MemberIDs(), *group.SelectedRoomID)
}

// Cancel closes a non-terminal group on behalf of a member or an admin and
// releases everything the group held, within the same operation that marks
// it cancelled.
func (m *Manager) Cancel(ctx context.Context, actor models.Student, groupID primitive.ObjectID, reason string) (models.RoommateGroup, error) {
	var zero models.RoommateGroup

	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if group.Member(actor.ID) == nil && actor.Role != "admin" {
		return zero, ErrNotGroupMember
	}
	if reason == "" {
		reason = "group cancelled"
	}

	prior, err := m.groups.Terminate(ctx, groupID, models.GroupCancelled, reason)
	if errors.Is(err, groupstore.ErrConflict) {
		return zero, ErrConflict
	}
	if err != nil {
		return zero, err
	}

	m.release(ctx, prior)
	for _, id := range prior.MemberIDs() {
		if id != actor.ID {
			m.notify(ctx, id, "Roommate Group Cancelled", reason, models.NotifyRoommate)
		}
	}
	return m.groups.GetByID(ctx, groupID)
}

// release frees everything a terminated group held: open requests, the
// members' temporary rooms and payment obligations, the beds claimed at
// selection, the room reservation and the members' active-group references.
func (m *Manager) release(ctx context.Context, prior models.RoommateGroup) {
	ids := prior.MemberIDs()

	if err := m.requests.CancelOpenForGroup(ctx, prior.ID); err != nil {
		m.log.Warn("cancelling open requests failed", zap.Error(err), zap.String("group_id", prior.ID.Hex()))
	}
	if prior.SelectedRoomID != nil {
		if err := m.students.ReleaseTemporaryRoom(ctx, ids); err != nil {
			m.log.Warn("temporary room release failed", zap.Error(err), zap.String("group_id", prior.ID.Hex()))
		}
		m.giveBack(ctx, *prior.SelectedRoomID, len(ids))
		if err := m.rooms.Unreserve(ctx, *prior.SelectedRoomID); err != nil {
			m.log.Warn("room unreserve failed", zap.Error(err), zap.String("room_id", prior.SelectedRoomID.Hex()))
		}
	}
	if err := m.students.ClearActiveGroup(ctx, ids, prior.ID); err != nil {
		m.log.Warn("clearing group references failed", zap.Error(err), zap.String("group_id", prior.ID.Hex()))
	}
}

// teardown undoes a half-created group when founding fails partway.
func (m *Manager) teardown(ctx context.Context, group models.RoommateGroup, reason string, requestID *primitive.ObjectID) {
	if requestID != nil {
		if _, err := m.requests.MarkResponded(ctx, *requestID, models.RequestCancelled); err != nil &&
			!errors.Is(err, requeststore.ErrAlreadyResponded) {
			m.log.Warn("founding request cleanup failed", zap.Error(err))
		}
	}
	prior, err := m.groups.Terminate(ctx, group.ID, models.GroupCancelled, reason)
	if err != nil {
		if !errors.Is(err, groupstore.ErrConflict) {
			m.log.Warn("founding group cleanup failed", zap.Error(err), zap.String("group_id", group.ID.Hex()))
		}
		return
	}
	if err := m.students.ClearActiveGroup(ctx, prior.MemberIDs(), prior.ID); err != nil {
		m.log.Warn("founding reference cleanup failed", zap.Error(err), zap.String("group_id", prior.ID.Hex()))
	}
}

// giveBack returns beds claimed at selection when the group never finalizes.
func (m *Manager) giveBack(ctx context.Context, roomID primitive.ObjectID, n int) {
	if err := m.rooms.Release(ctx, roomID, n); err != nil {
		m.log.Error("occupancy give-back failed", zap.Error(err),
			zap.String("room_id", roomID.Hex()), zap.Int("beds", n))
	}
}

func (m *Manager) notify(ctx context.Context, recipient primitive.ObjectID, title, message, typ string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, recipient, title, message, typ); err != nil {
		m.log.Warn("notification dispatch failed",
			zap.Error(err),
			zap.String("recipient", recipient.Hex()),
			zap.String("title", title))
	}
}
