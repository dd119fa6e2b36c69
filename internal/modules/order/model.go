// README: Order aggregate and status definitions.
package order

import (
	"errors"
	"time"

	"quickcart/internal/types"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusAssigned       Status = "assigned_to_delivery"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrPrecondition means the order is already assigned or not ready for
	// pickup; an assignment attempt must abort with no partial mutation.
	ErrPrecondition = errors.New("assignment precondition failed")
)

type Order struct {
	ID                types.ID
	CustomerID        types.ID
	VendorID          types.ID
	ServiceAreaID     types.ID
	Status            Status
	DeliveryPartnerID *types.ID
	// VendorLocation is the vendor's position snapshotted when the order was
	// placed; a vendor moving later must not reroute in-flight orders.
	VendorLocation    *types.Point
	DeliveryLocation  *types.Point
	DeliveryAddressID *types.ID
	CreatedAt         time.Time
	AssignedAt        *time.Time
}

// Event is one append-only row of the order's status history.
type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	Note       *string
	CreatedAt  time.Time
}

// AllowedTransitions represents the order state flow as code. Only the
// dispatch-relevant transitions are owned by this core; earlier ones are
// here so history events stay coherent.
var AllowedTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusAssigned, StatusCancelled},
	StatusAssigned:       {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusInTransit},
	StatusInTransit:      {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// ActiveStatuses are the states in which a courier is considered occupied by
// an order. A partner with any order in these states cannot accept another.
var ActiveStatuses = []Status{StatusAssigned, StatusPickedUp, StatusInTransit}

// IsActive reports whether the status counts against a courier's capacity.
func (s Status) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}
