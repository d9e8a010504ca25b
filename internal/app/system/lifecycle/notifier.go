package lifecycle

import (
	"context"

	notificationstore "github.com/hostelhaven/roomsync/internal/app/store/notifications"
	"github.com/hostelhaven/roomsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreNotifier persists notifications through the notifications store.
type StoreNotifier struct {
	store *notificationstore.Store
}

func NewStoreNotifier(store *notificationstore.Store) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Notify(ctx context.Context, recipient primitive.ObjectID, title, message, typ string) error {
	_, err := n.store.Insert(ctx, models.Notification{
		RecipientID: recipient,
		Title:       title,
		Message:     message,
		Type:        typ,
	})
	return err
}
