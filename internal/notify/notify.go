// README: Notification channel boundary. The core decides who to notify;
// delivering the push to a device is someone else's job.
package notify

import (
	"context"

	"quickcart/internal/types"
)

// CancelReasonAcceptedByOther tells a courier the offer they were shown has
// been taken by someone else.
const CancelReasonAcceptedByOther = "accepted_by_other"

// Offer is the payload sent to each candidate courier for a ready order.
type Offer struct {
	OrderID            types.ID    `json:"order_id"`
	PickupLocation     types.Point `json:"pickup_location"`
	EstimatedKmToDrop  *float64    `json:"estimated_km_to_dropoff,omitempty"`
	ExpandedSearchPass int         `json:"expanded_search_pass,omitempty"`
}

type Notifier interface {
	// Offer fans the payload out to the given recipients.
	Offer(ctx context.Context, recipients []types.ID, offer Offer) error
	// Cancel tells recipients a previously offered order is no longer available.
	Cancel(ctx context.Context, recipients []types.ID, orderID types.ID, reason string) error
}
