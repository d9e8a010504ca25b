// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group status values. completed, cancelled and rejected are terminal.
const (
	GroupPending        = "pending"
	GroupConfirmed      = "confirmed"
	GroupRoomSelected   = "room_selected"
	GroupPaymentPending = "payment_pending"
	GroupCompleted      = "completed"
	GroupCancelled      = "cancelled"
	GroupRejected       = "rejected"
)

// ActiveGroupStatuses are the non-terminal statuses. A student may be a
// member of at most one group in any of these states.
var ActiveGroupStatuses = []string{
	GroupPending, GroupConfirmed, GroupRoomSelected, GroupPaymentPending,
}

// How the group came to be: through an AI match suggestion or a manual
// request.
const (
	FormationAIMatched = "ai_matched"
	FormationManual    = "manual"
)

// GroupMember is a student's standing inside a group. The creator is
// accepted implicitly at creation; everyone else starts unaccepted and the
// group confirms only when all members have accepted. PaymentStatus moves
// NOT_STARTED → PAYMENT_PENDING when the room is held and → PAID when the
// member's payment lands; PaymentRef is the reference issued for that
// payment.
type GroupMember struct {
	StudentID     primitive.ObjectID `bson:"student_id" json:"student_id"`
	Accepted      bool               `bson:"accepted" json:"accepted"`
	PaymentStatus string             `bson:"payment_status" json:"payment_status"`
	PaymentRef    string             `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
}

// RoommateGroup is the persistent state machine for a set of students who
// want to share a room.
//
// Status is the single source of truth for the workflow. Version is bumped
// on every transition and every transition filters on the expected prior
// (status, version), so concurrent writers cannot double-apply a transition
// or lose an update.
type RoommateGroup struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	Members   []GroupMember      `bson:"members" json:"members"`
	Status    string             `bson:"status" json:"status"`

	RoomType        string `bson:"room_type" json:"room_type"`
	AverageScore    int    `bson:"average_score,omitempty" json:"average_score,omitempty"`
	FormationMethod string `bson:"formation_method" json:"formation_method"`

	SelectedRoomID     *primitive.ObjectID `bson:"selected_room_id,omitempty" json:"selected_room_id,omitempty"`
	RoomSelectedAt     *time.Time          `bson:"room_selected_at,omitempty" json:"room_selected_at,omitempty"`
	PaymentConfirmedAt *time.Time          `bson:"payment_confirmed_at,omitempty" json:"payment_confirmed_at,omitempty"`
	CancellationReason string              `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`

	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the group can no longer transition.
func (g *RoommateGroup) Terminal() bool {
	switch g.Status {
	case GroupCompleted, GroupCancelled, GroupRejected:
		return true
	}
	return false
}

// Member returns the membership entry for a student, or nil.
func (g *RoommateGroup) Member(studentID primitive.ObjectID) *GroupMember {
	for i := range g.Members {
		if g.Members[i].StudentID == studentID {
			return &g.Members[i]
		}
	}
	return nil
}

// IsLeader reports whether the student created the group.
func (g *RoommateGroup) IsLeader(studentID primitive.ObjectID) bool {
	return g.CreatedBy == studentID
}

// AllAccepted reports whether every member has accepted.
func (g *RoommateGroup) AllAccepted() bool {
	for i := range g.Members {
		if !g.Members[i].Accepted {
			return false
		}
	}
	return len(g.Members) > 0
}

// AllPaid reports whether every member's payment has landed.
func (g *RoommateGroup) AllPaid() bool {
	for i := range g.Members {
		if g.Members[i].PaymentStatus != PaymentPaid {
			return false
		}
	}
	return len(g.Members) > 0
}

// MemberIDs returns the member object ids in document order.
func (g *RoommateGroup) MemberIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(g.Members))
	for i := range g.Members {
		ids[i] = g.Members[i].StudentID
	}
	return ids
}

// RecommendedRoomType derives the room type from the current member count.
func (g *RoommateGroup) RecommendedRoomType() string {
	return RecommendedRoomType(len(g.Members))
}
