// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types used by the matching workflow.
const (
	NotifyRoommate = "roommate"
	NotifyPayment  = "payment"
	NotifyRoom     = "room"
)

// Notification is a persisted in-app message. Dispatch is fire-and-forget:
// the lifecycle manager records notifications best-effort and never fails a
// transition over them.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Type        string             `bson:"type" json:"type"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
