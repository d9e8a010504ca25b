// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("roommate request not found")
	// ErrDuplicateRequest fires on the partial unique index over pending
	// (requester, recipient) pairs.
	ErrDuplicateRequest = errors.New("a pending roommate request already exists between these students")
	// ErrAlreadyResponded means the request left pending before this
	// response landed.
	ErrAlreadyResponded = errors.New("this roommate request has already been resolved")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roommate_requests")}
}

func (s *Store) Create(ctx context.Context, r models.RoommateRequest) (models.RoommateRequest, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	if r.Status == "" {
		r.Status = models.RequestPending
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.RoommateRequest{}, ErrDuplicateRequest
		}
		return models.RoommateRequest{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.RoommateRequest, error) {
	var r models.RoommateRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoommateRequest{}, ErrNotFound
	}
	if err != nil {
		return models.RoommateRequest{}, err
	}
	return r, nil
}

// PendingForRecipient lists the student's unanswered incoming requests,
// newest first.
func (s *Store) PendingForRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]models.RoommateRequest, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"recipient_id": recipientID, "status": models.RequestPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.RoommateRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// PendingBetween reports whether an unanswered request exists between the
// two students in either direction.
func (s *Store) PendingBetween(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"status": models.RequestPending,
		"$or": bson.A{
			bson.M{"requester_id": a, "recipient_id": b},
			bson.M{"requester_id": b, "recipient_id": a},
		},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkResponded resolves a pending request. The pending guard makes a
// second response ErrAlreadyResponded instead of a silent overwrite.
func (s *Store) MarkResponded(ctx context.Context, id primitive.ObjectID, status string) (models.RoommateRequest, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.RoommateRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":       status,
			"responded_at": now,
			"updated_at":   now,
		}}, opts).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.RoommateRequest{}, gerr
		}
		return models.RoommateRequest{}, ErrAlreadyResponded
	}
	if err != nil {
		return models.RoommateRequest{}, err
	}
	return r, nil
}

// CancelOpenForGroup resolves any still-pending requests attached to a
// group that is being torn down.
func (s *Store) CancelOpenForGroup(ctx context.Context, groupID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateMany(ctx,
		bson.M{"group_id": groupID, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":       models.RequestCancelled,
			"responded_at": now,
			"updated_at":   now,
		}})
	return err
}
