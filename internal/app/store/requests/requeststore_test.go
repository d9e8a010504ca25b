package requeststore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	"github.com/hostelhaven/roomsync/internal/app/system/indexes"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func newRequest(requester, recipient primitive.ObjectID) models.RoommateRequest {
	return models.RoommateRequest{
		GroupID:     primitive.NewObjectID(),
		RequesterID: requester,
		RecipientID: recipient,
		Message:     "want to share a double?",
		Score:       82,
	}
}

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newRequest(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.RequestPending {
		t.Errorf("status: got %q, want %q", created.Status, models.RequestPending)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicatePendingPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	requester, recipient := primitive.NewObjectID(), primitive.NewObjectID()
	first, err := store.Create(ctx, newRequest(requester, recipient))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Create(ctx, newRequest(requester, recipient)); !errors.Is(err, requeststore.ErrDuplicateRequest) {
		t.Errorf("duplicate pending pair: got %v, want ErrDuplicateRequest", err)
	}

	// Once the first is resolved the pair can be requested again.
	if _, err := store.MarkResponded(ctx, first.ID, models.RequestRejected); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}
	if _, err := store.Create(ctx, newRequest(requester, recipient)); err != nil {
		t.Errorf("re-request after resolution failed: %v", err)
	}
}

func TestStore_PendingForRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	first, err := store.Create(ctx, newRequest(primitive.NewObjectID(), recipient))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, newRequest(primitive.NewObjectID(), recipient)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Requests aimed elsewhere do not show up.
	if _, err := store.Create(ctx, newRequest(primitive.NewObjectID(), primitive.NewObjectID())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.MarkResponded(ctx, first.ID, models.RequestAccepted); err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}

	got, err := store.PendingForRecipient(ctx, recipient)
	if err != nil {
		t.Fatalf("PendingForRecipient failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d pending requests, want 1", len(got))
	}
	if got[0].RecipientID != recipient {
		t.Errorf("recipient: got %v, want %v", got[0].RecipientID, recipient)
	}
}

func TestStore_PendingBetween_EitherDirection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := store.Create(ctx, newRequest(a, b)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, pair := range [][2]primitive.ObjectID{{a, b}, {b, a}} {
		pending, err := store.PendingBetween(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("PendingBetween failed: %v", err)
		}
		if !pending {
			t.Errorf("PendingBetween(%v, %v) = false, want true", pair[0], pair[1])
		}
	}

	pending, err := store.PendingBetween(ctx, a, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("PendingBetween failed: %v", err)
	}
	if pending {
		t.Error("PendingBetween reported a pair with no request")
	}
}

func TestStore_MarkResponded_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newRequest(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resolved, err := store.MarkResponded(ctx, created.ID, models.RequestAccepted)
	if err != nil {
		t.Fatalf("MarkResponded failed: %v", err)
	}
	if resolved.Status != models.RequestAccepted {
		t.Errorf("status: got %q, want %q", resolved.Status, models.RequestAccepted)
	}
	if resolved.RespondedAt == nil {
		t.Error("expected RespondedAt to be set")
	}

	if _, err := store.MarkResponded(ctx, created.ID, models.RequestRejected); !errors.Is(err, requeststore.ErrAlreadyResponded) {
		t.Errorf("second response: got %v, want ErrAlreadyResponded", err)
	}
	if _, err := store.MarkResponded(ctx, primitive.NewObjectID(), models.RequestAccepted); !errors.Is(err, requeststore.ErrNotFound) {
		t.Errorf("response to missing request: got %v, want ErrNotFound", err)
	}
}

func TestStore_CancelOpenForGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	req := newRequest(primitive.NewObjectID(), primitive.NewObjectID())
	req.GroupID = groupID
	created, err := store.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.CancelOpenForGroup(ctx, groupID); err != nil {
		t.Fatalf("CancelOpenForGroup failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RequestCancelled {
		t.Errorf("status: got %q, want %q", got.Status, models.RequestCancelled)
	}
}
