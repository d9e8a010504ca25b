package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hostelhaven/roomsync/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStudent creates a registered student who has not yet entered the
// matching pool: no room type and no preferences set.
func (f *Fixtures) CreateStudent(ctx context.Context, name, gender string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	email := text.Fold(name) + "@test.example"
	st := models.Student{
		ID:               primitive.NewObjectID(),
		Name:             name,
		NameCI:           text.Fold(name),
		StudentID:        "S-" + primitive.NewObjectID().Hex()[:8],
		Email:            email,
		EmailCI:          text.Fold(email),
		Gender:           gender,
		Role:             "student",
		OnboardingStatus: models.OnboardingPending,
		PaymentStatus:    models.PaymentNotStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}

	return st
}

// CreatePoolStudent creates a student who is fully eligible for matching:
// opted in, with a selected room type and answered preferences.
func (f *Fixtures) CreatePoolStudent(ctx context.Context, name, gender, roomType string, prefs models.Preferences) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	email := text.Fold(name) + "@test.example"
	st := models.Student{
		ID:               primitive.NewObjectID(),
		Name:             name,
		NameCI:           text.Fold(name),
		StudentID:        "S-" + primitive.NewObjectID().Hex()[:8],
		Email:            email,
		EmailCI:          text.Fold(email),
		Gender:           gender,
		Role:             "student",
		SelectedRoomType: roomType,
		AIPreferences:    prefs,
		MatchingOptIn:    true,
		OnboardingStatus: models.OnboardingMatching,
		PaymentStatus:    models.PaymentNotStarted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}

	return st
}

// CreateRoom creates an available room with capacity derived from the type.
func (f *Fixtures) CreateRoom(ctx context.Context, number, gender, roomType string) models.Room {
	f.t.Helper()

	now := time.Now().UTC()
	room := models.Room{
		ID:               primitive.NewObjectID(),
		RoomNumber:       number,
		Block:            "A",
		Floor:            1,
		Gender:           gender,
		RoomType:         roomType,
		Capacity:         models.RoomTypeCapacity(roomType),
		CurrentOccupancy: 0,
		Status:           models.RoomAvailable,
		TotalPrice:       2400,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("rooms").InsertOne(ctx, room); err != nil {
		f.t.Fatalf("failed to create test room: %v", err)
	}

	return room
}

// CreateGroup creates a roommate group in the given status with the given
// members, all marked accepted, and links each member's active group
// reference to it.
func (f *Fixtures) CreateGroup(ctx context.Context, status, roomType string, students ...models.Student) models.RoommateGroup {
	f.t.Helper()

	if len(students) == 0 {
		f.t.Fatal("CreateGroup requires at least one student")
	}

	now := time.Now().UTC()
	members := make([]models.GroupMember, 0, len(students))
	for _, st := range students {
		members = append(members, models.GroupMember{
			StudentID:     st.ID,
			Accepted:      true,
			PaymentStatus: models.PaymentNotStarted,
		})
	}

	grp := models.RoommateGroup{
		ID:              primitive.NewObjectID(),
		CreatedBy:       students[0].ID,
		Members:         members,
		Status:          status,
		RoomType:        roomType,
		FormationMethod: "manual",
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("roommate_groups").InsertOne(ctx, grp); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	if !grp.Terminal() {
		ids := make([]primitive.ObjectID, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
		_, err := f.db.Collection("students").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			bson.M{"$set": bson.M{"roommate_group_id": grp.ID, "updated_at": now}},
		)
		if err != nil {
			f.t.Fatalf("failed to link students to test group: %v", err)
		}
	}

	return grp
}
