// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = errors.New("student not found")
	ErrDuplicateEmail = errors.New("a student with this email already exists")
	// ErrPaymentAlreadyComplete is returned when a payment is submitted for
	// a member who has already paid.
	ErrPaymentAlreadyComplete = errors.New("payment already recorded for this student")
	// ErrPaymentNotDue is returned when no payment is awaited (no room held).
	ErrPaymentNotDue = errors.New("no payment is currently due for this student")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Student, error) {
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}

func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	now := time.Now().UTC()
	st.ID = primitive.NewObjectID()
	st.NameCI = text.Fold(st.Name)
	st.EmailCI = text.Fold(st.Email)
	if st.Role == "" {
		st.Role = "student"
	}
	if st.OnboardingStatus == "" {
		st.OnboardingStatus = models.OnboardingPending
	}
	if st.PaymentStatus == "" {
		st.PaymentStatus = models.PaymentNotStarted
	}
	st.CreatedAt = now
	st.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateEmail
		}
		return models.Student{}, err
	}
	return st, nil
}

// SetPreferences stores the lifestyle questionnaire and opts the student
// into matching. Students with answers on file move to the matching stage
// of onboarding unless they are already further along.
func (s *Store) SetPreferences(ctx context.Context, id primitive.ObjectID, prefs models.Preferences) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"ai_preferences":  prefs,
			"matching_opt_in": true,
			"updated_at":      time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetRoomType(ctx context.Context, id primitive.ObjectID, roomType string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"selected_room_type": roomType,
			"updated_at":         time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EligiblePool returns the matching pool for a requester: same gender, same
// target room type, opted in with preferences set, no room held or assigned
// and no active group reference. The requester is excluded.
func (s *Store) EligiblePool(ctx context.Context, exclude primitive.ObjectID, gender, roomType string) ([]models.Student, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"_id":                bson.M{"$ne": exclude},
		"gender":             gender,
		"selected_room_type": roomType,
		"matching_opt_in":    true,
		"ai_preferences":     bson.M{"$exists": true},
		"room_id":            nil,
		"temporary_room_id":  nil,
		"roommate_group_id":  nil,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pool []models.Student
	if err := cur.All(ctx, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// SetActiveGroup points a student at their active group. Guarded so a
// student who already has a group reference cannot be claimed by a second
// group; ErrConflict-style failures surface as false.
func (s *Store) SetActiveGroup(ctx context.Context, id, groupID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "roommate_group_id": nil},
		bson.M{"$set": bson.M{
			"roommate_group_id": groupID,
			"onboarding_status": models.OnboardingMatching,
			"updated_at":        time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ClearActiveGroup removes the group reference from members whose reference
// still points at the given group.
func (s *Store) ClearActiveGroup(ctx context.Context, ids []primitive.ObjectID, groupID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "roommate_group_id": groupID},
		bson.M{
			"$set":   bson.M{"updated_at": time.Now().UTC()},
			"$unset": bson.M{"roommate_group_id": ""},
		})
	return err
}

// HoldTemporaryRoom places the provisional hold on every member when their
// group selects a room: temporary room set, onboarding moves to
// room_selected and each member owes the full per-student amount.
func (s *Store) HoldTemporaryRoom(ctx context.Context, ids []primitive.ObjectID, roomID primitive.ObjectID, amount float64) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"temporary_room_id": roomID,
			"onboarding_status": models.OnboardingRoomSelected,
			"payment_status":    models.PaymentPending,
			"amount_to_pay":     amount,
			"updated_at":        time.Now().UTC(),
		}})
	return err
}

// MarkPaid flips one student PAYMENT_PENDING → PAID. Submitting twice is
// ErrPaymentAlreadyComplete; submitting with no payment due is
// ErrPaymentNotDue.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentPaid,
			"updated_at":     time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 1 {
		return nil
	}
	st, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if st.PaymentStatus == models.PaymentPaid {
		return ErrPaymentAlreadyComplete
	}
	return ErrPaymentNotDue
}

// FinalizeRoom converts the members' temporary hold into the permanent
// assignment.
func (s *Store) FinalizeRoom(ctx context.Context, ids []primitive.ObjectID, roomID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{
			"$set": bson.M{
				"room_id":           roomID,
				"onboarding_status": models.OnboardingConfirmed,
				"updated_at":        time.Now().UTC(),
			},
			"$unset": bson.M{"temporary_room_id": ""},
		})
	return err
}

// ReleaseTemporaryRoom undoes the hold on cancellation. Members who had
// already paid keep their PAID marker for the refund workflow; everyone
// else reverts to NOT_STARTED with nothing owed.
func (s *Store) ReleaseTemporaryRoom(ctx context.Context, ids []primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{
			"$set": bson.M{
				"onboarding_status": models.OnboardingMatching,
				"amount_to_pay":     0,
				"updated_at":        now,
			},
			"$unset": bson.M{"temporary_room_id": ""},
		})
	if err != nil {
		return err
	}
	_, err = s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentNotStarted,
			"updated_at":     now,
		}})
	return err
}
