package notificationstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	notificationstore "github.com/hostelhaven/roomsync/internal/app/store/notifications"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"github.com/hostelhaven/roomsync/internal/testutil"
)

func TestStore_ListForRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Insert(ctx, models.Notification{
			RecipientID: recipient,
			Title:       title,
			Message:     "body",
			Type:        models.NotifyRoommate,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := store.Insert(ctx, models.Notification{
		RecipientID: primitive.NewObjectID(),
		Title:       "someone else's",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.ListForRecipient(ctx, recipient, 2)
	if err != nil {
		t.Fatalf("ListForRecipient failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want limit of 2", len(got))
	}
	for _, n := range got {
		if n.RecipientID != recipient {
			t.Errorf("notification for wrong recipient: %v", n.RecipientID)
		}
	}
}

func TestStore_MarkRead_OwnerOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	recipient := primitive.NewObjectID()
	created, err := store.Insert(ctx, models.Notification{
		RecipientID: recipient,
		Title:       "group confirmed",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Someone else's id does not match.
	if err := store.MarkRead(ctx, created.ID, primitive.NewObjectID()); !errors.Is(err, notificationstore.ErrNotFound) {
		t.Errorf("MarkRead as non-owner: got %v, want ErrNotFound", err)
	}

	if err := store.MarkRead(ctx, created.ID, recipient); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	got, err := store.ListForRecipient(ctx, recipient, 0)
	if err != nil {
		t.Fatalf("ListForRecipient failed: %v", err)
	}
	if len(got) != 1 || !got[0].Read {
		t.Error("expected the notification to be marked read")
	}
}
