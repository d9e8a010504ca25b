// internal/app/store/rooms/roomstore.go
package roomstore

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

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("room not found")
	// ErrRoomFull means the guarded occupancy increment found too few free
	// beds at update time. Another group got there first.
	ErrRoomFull = errors.New("room does not have enough free capacity")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("rooms")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Room, error) {
	var r models.Room
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Room{}, ErrNotFound
	}
	if err != nil {
		return models.Room{}, err
	}
	return r, nil
}

func (s *Store) Create(ctx context.Context, r models.Room) (models.Room, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	if r.Status == "" {
		r.Status = models.RoomAvailable
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Room{}, err
	}
	return r, nil
}

// AvailableForGroup lists rooms a group of the given size could select:
// matching gender and type, selectable status, not under maintenance, and
// at least groupSize free beds at read time. Callers must still expect the
// final capacity check at selection and at finalize to fail under races.
func (s *Store) AvailableForGroup(ctx context.Context, gender, roomType string, groupSize int) ([]models.Room, error) {
	filter := bson.M{
		"gender":    gender,
		"room_type": roomType,
		"status":    bson.M{"$in": []string{models.RoomAvailable, models.RoomReserved}},
		"maintenance_status": bson.M{"$nin": []string{
			models.MaintenanceUnder, models.MaintenanceBlocked,
		}},
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$current_occupancy", groupSize}},
			"$capacity",
		}},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "block", Value: 1},
		{Key: "room_number", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rooms []models.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Reserve marks an available room reserved while a group's payments are in
// flight. Already-reserved rooms pass through untouched.
func (s *Store) Reserve(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RoomAvailable},
		bson.M{"$set": bson.M{
			"status":     models.RoomReserved,
			"updated_at": time.Now().UTC(),
		}})
	return err
}

// Unreserve reopens a reserved room whose group fell apart before paying.
// Rooms in any other status are left alone.
func (s *Store) Unreserve(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RoomReserved},
		bson.M{"$set": bson.M{
			"status":     models.RoomAvailable,
			"updated_at": time.Now().UTC(),
		}})
	return err
}

// Allocate claims n beds. The capacity re-check and the increment are a
// single conditional update: if occupancy+n would exceed capacity the
// update matches nothing and ErrRoomFull is returned, so two groups racing
// for the last beds cannot both win.
func (s *Store) Allocate(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"$expr": bson.M{"$lte": bson.A{
				bson.M{"$add": bson.A{"$current_occupancy", n}},
				"$capacity",
			}},
		},
		bson.M{
			"$inc": bson.M{"current_occupancy": n},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrRoomFull
	}

	// Best-effort status refresh; occupancy is the authoritative count.
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id, "$expr": bson.M{"$gte": bson.A{"$current_occupancy", "$capacity"}}},
		bson.M{"$set": bson.M{"status": models.RoomOccupied}})
	return err
}

// Release returns n beds, flooring at zero, and reopens the room when beds
// free up. Used by cancellation and admin deallocation.
func (s *Store) Release(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "current_occupancy": bson.M{"$gte": n}},
		bson.M{
			"$inc": bson.M{"current_occupancy": -n},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		// Occupancy lower than n: clamp to zero rather than going negative.
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": id},
			bson.M{"$set": bson.M{
				"current_occupancy": 0,
				"updated_at":        time.Now().UTC(),
			}})
		if err != nil {
			return err
		}
	}
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id, "$expr": bson.M{"$lt": bson.A{"$current_occupancy", "$capacity"}}},
		bson.M{"$set": bson.M{"status": models.RoomAvailable}})
	return err
}
