// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists roommate groups. Every transition is a conditional update
// filtered on the expected prior status (and, where it matters, version),
// so two requests racing on the same group cannot both win: the loser sees
// ErrConflict and re-reads.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("roommate group not found")
	// ErrConflict means a guarded update matched nothing: the group was not
	// (or is no longer) in the expected state. Callers re-read to find out
	// which.
	ErrConflict = errors.New("group state changed concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roommate_groups")}
}

// Create inserts a new pending group. The creator must be the first member
// and is accepted implicitly; remaining members start unaccepted.
func (s *Store) Create(ctx context.Context, g models.RoommateGroup) (models.RoommateGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Status == "" {
		g.Status = models.GroupPending
	}
	if g.FormationMethod == "" {
		g.FormationMethod = models.FormationManual
	}
	for i := range g.Members {
		if g.Members[i].PaymentStatus == "" {
			g.Members[i].PaymentStatus = models.PaymentNotStarted
		}
	}
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.RoommateGroup, error) {
	var g models.RoommateGroup
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, ErrNotFound
	}
	if err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}

// ActiveForStudent returns the student's non-terminal group, if any.
func (s *Store) ActiveForStudent(ctx context.Context, studentID primitive.ObjectID) (models.RoommateGroup, bool, error) {
	var g models.RoommateGroup
	err := s.c.FindOne(ctx, bson.M{
		"members.student_id": studentID,
		"status":             bson.M{"$in": models.ActiveGroupStatuses},
	}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, false, nil
	}
	if err != nil {
		return models.RoommateGroup{}, false, err
	}
	return g, true, nil
}

// MarkMemberAccepted flips one member's acceptance on a pending group and
// returns the updated document. ErrConflict if the group is no longer
// pending or the member was already accepted.
func (s *Store) MarkMemberAccepted(ctx context.Context, groupID, studentID primitive.ObjectID) (models.RoommateGroup, error) {
	filter := bson.M{
		"_id":    groupID,
		"status": models.GroupPending,
		"members": bson.M{"$elemMatch": bson.M{
			"student_id": studentID,
			"accepted":   false,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"members.$[m].accepted": true,
			"updated_at":            time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.student_id": studentID}},
		})

	var g models.RoommateGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, ErrConflict
	}
	if err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}

// ConfirmIfAllAccepted moves pending → confirmed iff, at update time, no
// member is still unaccepted. The unanimity test and the status flip are a
// single conditional update, so two concurrent acceptances cannot
// double-confirm. Returns whether the confirmation happened.
func (s *Store) ConfirmIfAllAccepted(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":    groupID,
		"status": models.GroupPending,
		"members": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"accepted": false,
		}}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.GroupConfirmed,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// SetRoomSelected moves confirmed → room_selected, records the room and
// flips every member's payment status to PAYMENT_PENDING. ErrConflict if
// the group is not confirmed or a room is already set.
func (s *Store) SetRoomSelected(ctx context.Context, groupID, roomID primitive.ObjectID) (models.RoommateGroup, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":              groupID,
		"status":           models.GroupConfirmed,
		"selected_room_id": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"status":                     models.GroupRoomSelected,
			"selected_room_id":           roomID,
			"room_selected_at":           now,
			"members.$[].payment_status": models.PaymentPending,
			"updated_at":                 now,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var g models.RoommateGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, ErrConflict
	}
	if err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}

// MarkMemberPaid records one member's payment and returns the updated
// group so the caller can test AllPaid on a fresh read. ErrConflict if the
// group is not in a paying state or the member is not awaiting payment.
func (s *Store) MarkMemberPaid(ctx context.Context, groupID, studentID primitive.ObjectID, paymentRef string) (models.RoommateGroup, error) {
	filter := bson.M{
		"_id":    groupID,
		"status": bson.M{"$in": []string{models.GroupRoomSelected, models.GroupPaymentPending}},
		"members": bson.M{"$elemMatch": bson.M{
			"student_id":     studentID,
			"payment_status": models.PaymentPending,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"members.$[m].payment_status": models.PaymentPaid,
			"members.$[m].payment_ref":    paymentRef,
			"updated_at":                  time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.student_id": studentID}},
		})

	var g models.RoommateGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, ErrConflict
	}
	if err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}

// AdvanceToPaymentPending moves room_selected → payment_pending. The first
// member payment triggers it; later payments find the group already
// advanced, which is not an error.
func (s *Store) AdvanceToPaymentPending(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": groupID, "status": models.GroupRoomSelected},
		bson.M{
			"$set": bson.M{
				"status":     models.GroupPaymentPending,
				"updated_at": time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		})
	return err
}

// Complete finalizes the group: the status flip, the all-paid test and the
// version check are one conditional update. Returns false without error
// when another finalizer already won, which callers treat as done.
func (s *Store) Complete(ctx context.Context, groupID primitive.ObjectID, version int64) (bool, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":     groupID,
		"status":  bson.M{"$in": []string{models.GroupRoomSelected, models.GroupPaymentPending}},
		"version": version,
		"members": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"payment_status": bson.M{"$ne": models.PaymentPaid},
		}}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":               models.GroupCompleted,
			"payment_confirmed_at": now,
			"updated_at":           now,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Terminate moves a non-terminal group to rejected or cancelled and returns
// the prior document so the caller can release whatever the group held.
// ErrConflict if the group is already terminal.
func (s *Store) Terminate(ctx context.Context, groupID primitive.ObjectID, toStatus, reason string) (models.RoommateGroup, error) {
	filter := bson.M{
		"_id":    groupID,
		"status": bson.M{"$in": models.ActiveGroupStatuses},
	}
	update := bson.M{
		"$set": bson.M{
			"status":              toStatus,
			"cancellation_reason": reason,
			"updated_at":          time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var g models.RoommateGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateGroup{}, ErrConflict
	}
	if err != nil {
		return models.RoommateGroup{}, err
	}
	return g, nil
}
