// README: Delivery partner model, live-position candidates, and route trace.
package courier

import (
	"errors"
	"time"

	"quickcart/internal/types"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

var ErrPartnerNotFound = errors.New("delivery partner not found")

type DeliveryPartner struct {
	ID              types.ID
	UserID          types.ID
	CurrentLocation *types.Point
	Status          Status
	// UserStatus mirrors the linked account; only "active" users are
	// eligible for matching.
	UserStatus      string
	Rating          float64
	TotalDeliveries int
	ServiceAreaID   types.ID
}

func (p *DeliveryPartner) Eligible() bool {
	return p.Status == StatusAvailable && p.UserStatus == "active"
}

// GeoCandidate is a raw hit from the live-position index, before profile
// filtering.
type GeoCandidate struct {
	ID         types.ID
	DistanceKm float64
}

// HistoryPoint is one append-only row of a courier's route trace.
type HistoryPoint struct {
	PartnerID  types.ID
	OrderID    *types.ID
	Position   types.Point
	RecordedAt time.Time
}

// ActiveDelivery is returned from a location update when the courier is
// mid-delivery: the order they carry and a fresh ETA toward its destination.
type ActiveDelivery struct {
	OrderID    types.ID `json:"order_id"`
	ETAMinutes int      `json:"eta_minutes"`
	ETADisplay string   `json:"eta_display"`
}
