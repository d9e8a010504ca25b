// internal/domain/models/room.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room availability status.
const (
	RoomAvailable = "available"
	RoomReserved  = "reserved"
	RoomOccupied  = "occupied"
)

// Maintenance status values that block selection.
const (
	MaintenanceNone    = "none"
	MaintenanceUnder   = "under_maintenance"
	MaintenanceBlocked = "blocked"
)

// Room is owned by room management; this workflow reads it and performs the
// atomic occupancy updates through the room store. CurrentOccupancy counts
// finalized residents plus beds held by groups still paying: a group claims
// its beds when it selects the room and gives them back on cancellation, so
// free capacity is always Capacity - CurrentOccupancy regardless of payment
// state.
type Room struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	RoomNumber        string             `bson:"room_number" json:"room_number"`
	Block             string             `bson:"block,omitempty" json:"block,omitempty"`
	Floor             int                `bson:"floor" json:"floor"`
	Gender            string             `bson:"gender" json:"gender"`
	RoomType          string             `bson:"room_type" json:"room_type"`
	Capacity          int                `bson:"capacity" json:"capacity"`
	CurrentOccupancy  int                `bson:"current_occupancy" json:"current_occupancy"`
	Status            string             `bson:"status" json:"status"`
	MaintenanceStatus string             `bson:"maintenance_status,omitempty" json:"maintenance_status,omitempty"`
	TotalPrice        float64            `bson:"total_price" json:"total_price"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Selectable reports whether the room can be offered to a group at all.
func (r *Room) Selectable() bool {
	if r.MaintenanceStatus == MaintenanceUnder || r.MaintenanceStatus == MaintenanceBlocked {
		return false
	}
	return r.Status == RoomAvailable || r.Status == RoomReserved
}

// FreeCapacity returns the number of unclaimed beds.
func (r *Room) FreeCapacity() int {
	free := r.Capacity - r.CurrentOccupancy
	if free < 0 {
		return 0
	}
	return free
}
