package roomstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roomstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Room{
		RoomNumber: "A-101",
		Gender:     "male",
		RoomType:   models.RoomTypeDouble,
		Capacity:   2,
		TotalPrice: 2400,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.RoomAvailable {
		t.Errorf("status: got %q, want %q", created.Status, models.RoomAvailable)
	}
}

func TestStore_AvailableForGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roomstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	match := fixtures.CreateRoom(ctx, "B-201", "female", models.RoomTypeDouble)
	fixtures.CreateRoom(ctx, "B-202", "male", models.RoomTypeDouble)
	fixtures.CreateRoom(ctx, "B-203", "female", models.RoomTypeTriple)

	// Full room of the right shape must not be offered.
	full := fixtures.CreateRoom(ctx, "B-204", "female", models.RoomTypeDouble)
	if err := store.Allocate(ctx, full.ID, 2); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	got, err := store.AvailableForGroup(ctx, "female", models.RoomTypeDouble, 2)
	if err != nil {
		t.Fatalf("AvailableForGroup failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rooms, want 1", len(got))
	}
	if got[0].ID != match.ID {
		t.Errorf("room: got %v, want %v", got[0].ID, match.ID)
	}
}

func TestStore_Allocate_CapacityGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roomstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	room := fixtures.CreateRoom(ctx, "C-301", "male", models.RoomTypeTriple)

	if err := store.Allocate(ctx, room.ID, 2); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := store.Allocate(ctx, room.ID, 2); !errors.Is(err, roomstore.ErrRoomFull) {
		t.Errorf("over-allocation: got %v, want ErrRoomFull", err)
	}

	got, err := store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CurrentOccupancy != 2 {
		t.Errorf("occupancy: got %d, want 2", got.CurrentOccupancy)
	}

	// Filling the last bed flips the status.
	if err := store.Allocate(ctx, room.ID, 1); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	got, err = store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RoomOccupied {
		t.Errorf("status: got %q, want %q", got.Status, models.RoomOccupied)
	}

	if err := store.Allocate(ctx, primitive.NewObjectID(), 1); !errors.Is(err, roomstore.ErrNotFound) {
		t.Errorf("allocate on missing room: got %v, want ErrNotFound", err)
	}
}

func TestStore_Release_ReopensRoom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roomstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	room := fixtures.CreateRoom(ctx, "D-401", "female", models.RoomTypeDouble)
	if err := store.Allocate(ctx, room.ID, 2); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if err := store.Release(ctx, room.ID, 1); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	got, err := store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CurrentOccupancy != 1 {
		t.Errorf("occupancy: got %d, want 1", got.CurrentOccupancy)
	}
	if got.Status != models.RoomAvailable {
		t.Errorf("status: got %q, want %q after a bed freed up", got.Status, models.RoomAvailable)
	}

	// Releasing more than is held clamps at zero.
	if err := store.Release(ctx, room.ID, 5); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	got, err = store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CurrentOccupancy != 0 {
		t.Errorf("occupancy: got %d, want 0", got.CurrentOccupancy)
	}
}

func TestStore_ReserveAndUnreserve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := roomstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	room := fixtures.CreateRoom(ctx, "E-501", "male", models.RoomTypeQuad)

	if err := store.Reserve(ctx, room.ID); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	got, err := store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RoomReserved {
		t.Errorf("status: got %q, want %q", got.Status, models.RoomReserved)
	}

	if err := store.Unreserve(ctx, room.ID); err != nil {
		t.Fatalf("Unreserve failed: %v", err)
	}
	got, err = store.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RoomAvailable {
		t.Errorf("status: got %q, want %q", got.Status, models.RoomAvailable)
	}
}
