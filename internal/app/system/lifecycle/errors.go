// internal/app/system/lifecycle/errors.go
package lifecycle

import "errors"

// Precondition and state errors surfaced to API callers. Handlers map these
// to 4xx responses; none of them leaves partial state behind.
var (
	ErrAlreadyInGroup     = errors.New("you are already in an active roommate group")
	ErrRecipientInGroup   = errors.New("this student is already in an active roommate group")
	ErrGenderMismatch     = errors.New("roommate requests are limited to students of the same gender")
	ErrAlreadyAllocated   = errors.New("you already have a room allocated")
	ErrRecipientAllocated = errors.New("this student already has a room allocated")
	ErrRoomTypeNotSet     = errors.New("select a room type before sending roommate requests")
	ErrSingleRoomNoGroups = errors.New("single rooms do not need roommate groups")

	ErrNotRecipient      = errors.New("only the request's recipient can respond to it")
	ErrInvalidAction     = errors.New(`action must be "accept" or "reject"`)
	ErrDuplicateResponse = errors.New("this request has already been responded to")

	ErrNotGroupLeader       = errors.New("only the group leader can select a room")
	ErrNotGroupMember       = errors.New("you are not a member of this group")
	ErrGroupNotConfirmed    = errors.New("the group must be confirmed before selecting a room")
	ErrRoomTypeMismatch     = errors.New("room type does not match the group's room type")
	ErrRoomUnavailable      = errors.New("room is not available for selection")
	ErrRoomCapacityMismatch = errors.New("room does not have enough free capacity for the group")

	ErrNoPaymentDue           = errors.New("no payment is currently due")
	ErrPaymentAlreadyComplete = errors.New("payment has already been recorded")
	ErrGroupNotFullyPaid      = errors.New("not all group members have completed payment")

	// ErrConflict is the transient lost-the-race error: the caller should
	// refresh and retry. The manager retries idempotent re-checks once
	// internally before surfacing it.
	ErrConflict = errors.New("the group changed concurrently, refresh and retry")
)
