// internal/domain/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request status values.
const (
	RequestPending   = "pending"
	RequestAccepted  = "accepted"
	RequestRejected  = "rejected"
	RequestCancelled = "cancelled"
)

// RoommateRequest is the invitation that founds (or grows) a group. A
// partial unique index on (requester_id, recipient_id) with status=pending
// prevents duplicate outstanding invitations between the same pair.
type RoommateRequest struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	RequesterID primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`

	// Compatibility score the requester saw when sending; BelowThreshold
	// marks scores that came from the engine's fallback list.
	Score          int  `bson:"score,omitempty" json:"score,omitempty"`
	BelowThreshold bool `bson:"below_threshold,omitempty" json:"below_threshold,omitempty"`

	Status      string     `bson:"status" json:"status"`
	RespondedAt *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
