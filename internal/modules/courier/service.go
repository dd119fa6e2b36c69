// README: Courier service: location updates, route trace, live ETA.
package courier

import (
	"context"
	"log/slog"
	"time"

	"quickcart/internal/geo"
	"quickcart/internal/modules/order"
	"quickcart/internal/types"
)

type PartnerStore interface {
	Get(ctx context.Context, id types.ID) (*DeliveryPartner, error)
	SetPosition(ctx context.Context, id types.ID, p types.Point) error
	RemovePosition(ctx context.Context, id types.ID) error
	AppendHistory(ctx context.Context, h HistoryPoint) error
}

type OrderStore interface {
	ActiveByPartner(ctx context.Context, partnerID types.ID) (*order.Order, bool, error)
}

type Service struct {
	store  PartnerStore
	orders OrderStore
	log    *slog.Logger
}

func NewService(store PartnerStore, orders OrderStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, orders: orders, log: log}
}

// UpdateLocation records a courier position. The caller is expected to rate
// limit updates (one per 10 s); this service just writes what it is given.
// When the courier has an in-flight order, the response carries a fresh ETA
// toward the current destination: the vendor until pickup, the delivery
// address after.
func (s *Service) UpdateLocation(ctx context.Context, partnerID types.ID, lat, lng float64) (*ActiveDelivery, error) {
	if !geo.Validate(lat, lng) {
		return nil, geo.ErrInvalidCoordinates
	}
	p := types.Point{Lat: lat, Lng: lng}

	if _, err := s.store.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	if err := s.store.SetPosition(ctx, partnerID, p); err != nil {
		return nil, err
	}

	active, ok, err := s.orders.ActiveByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	hist := HistoryPoint{PartnerID: partnerID, Position: p, RecordedAt: time.Now().UTC()}
	if ok {
		hist.OrderID = &active.ID
	}
	if err := s.store.AppendHistory(ctx, hist); err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	dest := destination(active)
	if dest == nil {
		return &ActiveDelivery{OrderID: active.ID}, nil
	}
	dist, err := geo.DistanceKm(p, *dest)
	if err != nil {
		return &ActiveDelivery{OrderID: active.ID}, nil
	}
	eta := geo.ETAMinutes(dist)
	return &ActiveDelivery{
		OrderID:    active.ID,
		ETAMinutes: eta,
		ETADisplay: geo.FormatETA(eta, dist),
	}, nil
}

// GoOffline removes the courier from the live matching index.
func (s *Service) GoOffline(ctx context.Context, partnerID types.ID) error {
	return s.store.RemovePosition(ctx, partnerID)
}

func destination(o *order.Order) *types.Point {
	switch o.Status {
	case order.StatusPickedUp, order.StatusInTransit:
		if o.DeliveryLocation != nil {
			return o.DeliveryLocation
		}
	}
	return o.VendorLocation
}
