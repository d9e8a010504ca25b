// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room types a student can select during onboarding.
const (
	RoomTypeSingle = "Single"
	RoomTypeDouble = "Double"
	RoomTypeTriple = "Triple"
	RoomTypeQuad   = "Quad"
)

// Onboarding status values. Derived from the group workflow: "matching" while
// the student is in the pool or in a pending group, "room_selected" once the
// group holds a room, "confirmed" after the allocation is finalized.
const (
	OnboardingPending      = "pending"
	OnboardingMatching     = "matching"
	OnboardingRoomSelected = "room_selected"
	OnboardingConfirmed    = "confirmed"
)

// Per-student payment status for the room fee.
const (
	PaymentNotStarted = "NOT_STARTED"
	PaymentPending    = "PAYMENT_PENDING"
	PaymentPaid       = "PAID"
)

// RoomTypeCapacity maps a room type to the number of beds it holds.
// Zero means the type is unknown.
func RoomTypeCapacity(roomType string) int {
	switch roomType {
	case RoomTypeSingle:
		return 1
	case RoomTypeDouble:
		return 2
	case RoomTypeTriple:
		return 3
	case RoomTypeQuad:
		return 4
	}
	return 0
}

// RecommendedRoomType derives a room type from a group size (2 members →
// Double, 3 → Triple, 4 → Quad). Empty for sizes outside the group range.
func RecommendedRoomType(members int) string {
	switch members {
	case 2:
		return RoomTypeDouble
	case 3:
		return RoomTypeTriple
	case 4:
		return RoomTypeQuad
	}
	return ""
}

// Student is the matching-relevant slice of a hostel resident's profile.
//
// RoomID is the finalized allocation; TemporaryRoomID is a hold placed when
// the student's group selects a room and is cleared either by finalization
// (moved into RoomID) or by cancellation. RoommateGroupID points at the
// student's active group; terminal groups clear it. The group document's
// status is the source of truth for the workflow; the student-facing
// OnboardingStatus and PaymentStatus fields are maintained from it, never
// the other way around.
type Student struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	StudentID string             `bson:"student_id" json:"student_id"`
	Email     string             `bson:"email" json:"email"`
	EmailCI   string             `bson:"email_ci" json:"-"`
	Gender    string             `bson:"gender" json:"gender"`
	Course    string             `bson:"course,omitempty" json:"course,omitempty"`
	Year      int                `bson:"year,omitempty" json:"year,omitempty"`
	Role      string             `bson:"role" json:"role"` // "student" or "admin"

	SelectedRoomType string      `bson:"selected_room_type,omitempty" json:"selected_room_type,omitempty"`
	AIPreferences    Preferences `bson:"ai_preferences,omitempty" json:"ai_preferences,omitempty"`
	MatchingOptIn    bool        `bson:"matching_opt_in" json:"matching_opt_in"`

	RoomID          *primitive.ObjectID `bson:"room_id,omitempty" json:"room_id,omitempty"`
	TemporaryRoomID *primitive.ObjectID `bson:"temporary_room_id,omitempty" json:"temporary_room_id,omitempty"`
	RoommateGroupID *primitive.ObjectID `bson:"roommate_group_id,omitempty" json:"roommate_group_id,omitempty"`

	OnboardingStatus string  `bson:"onboarding_status" json:"onboarding_status"`
	PaymentStatus    string  `bson:"payment_status" json:"payment_status"`
	AmountToPay      float64 `bson:"amount_to_pay,omitempty" json:"amount_to_pay,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Allocated reports whether the student already holds a room, finalized or
// provisional. Allocated students are never eligible for matching.
func (s *Student) Allocated() bool {
	return s.RoomID != nil || s.TemporaryRoomID != nil
}
