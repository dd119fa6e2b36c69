// README: Dispatch result shape for courier matching.
package matching

import (
	"errors"

	"quickcart/internal/types"
)

// ErrVendorLocationMissing blocks matching: without a pickup point there is
// no center to search around.
var ErrVendorLocationMissing = errors.New("vendor location not set")

// Dispatch reports who was offered an order. An empty dispatch is a normal
// outcome, not an error; the caller decides whether to retry wider.
type Dispatch struct {
	PartnerIDs    []types.ID `json:"delivery_partner_ids"`
	NotifiedCount int        `json:"notified_count"`
}
