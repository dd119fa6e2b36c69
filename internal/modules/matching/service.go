// README: DeliveryPartnerMatcher: finds nearby available couriers for a
// ready order and owns the bounded radius-expansion retry protocol.
package matching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/geo"
	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/order"
	"quickcart/internal/notify"
	"quickcart/internal/types"
)

type OrderStore interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	AppendEvent(ctx context.Context, e *order.Event) error
}

type CourierFinder interface {
	Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]courier.GeoCandidate, error)
	GetMany(ctx context.Context, ids []types.ID) (map[types.ID]*courier.DeliveryPartner, error)
}

type DispatchStore interface {
	RecordDispatch(ctx context.Context, orderID types.ID, partnerIDs []types.ID) error
	NotifiedPartners(ctx context.Context, orderID types.ID) ([]types.ID, error)
	DispatchedAt(ctx context.Context, orderID types.ID) (time.Time, bool, error)
}

type Service struct {
	orders   OrderStore
	couriers CourierFinder
	dispatch DispatchStore
	notifier notify.Notifier
	cfg      config.MatchingConfig
	log      *slog.Logger
}

func NewService(
	orders OrderStore,
	couriers CourierFinder,
	dispatch DispatchStore,
	notifier notify.Notifier,
	cfg config.MatchingConfig,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		orders:   orders,
		couriers: couriers,
		dispatch: dispatch,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// NotifyNearbyPartners offers a ready order to the closest available
// couriers around the vendor. At most cfg.MaxNotify recipients, ascending by
// distance. Finding nobody is a normal empty dispatch.
func (s *Service) NotifyNearbyPartners(ctx context.Context, orderID types.ID, radiusKm float64) (Dispatch, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.BaseRadiusKm
	}
	return s.dispatchAt(ctx, orderID, radiusKm, 0)
}

// RetryWithExpandedRadius re-runs the search with a wider net. The attempt
// counter is supplied by the caller, not an internal timer. Attempt
// cfg.MaxAttempts and beyond is terminal: no search happens, the order's
// history gets a manual-assignment note, and the dispatch comes back empty.
func (s *Service) RetryWithExpandedRadius(ctx context.Context, orderID types.ID, attempt int) (Dispatch, error) {
	if attempt >= s.cfg.MaxAttempts {
		return s.requireManualAssignment(ctx, orderID, attempt)
	}
	radius := s.cfg.BaseRadiusKm + float64(attempt)*s.cfg.RadiusStepKm
	return s.dispatchAt(ctx, orderID, radius, attempt)
}

// CancelPendingNotifications tells everyone else the order is taken. It is a
// notification signal only; the order itself is not touched.
func (s *Service) CancelPendingNotifications(ctx context.Context, orderID, acceptingPartnerID types.ID) error {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return err
	}
	notified, err := s.dispatch.NotifiedPartners(ctx, orderID)
	if err != nil {
		return err
	}
	recipients := make([]types.ID, 0, len(notified))
	for _, id := range notified {
		if id != acceptingPartnerID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	return s.notifier.Cancel(ctx, recipients, orderID, notify.CancelReasonAcceptedByOther)
}

func (s *Service) dispatchAt(ctx context.Context, orderID types.ID, radiusKm float64, pass int) (Dispatch, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return Dispatch{}, err
	}
	if o.VendorLocation == nil {
		return Dispatch{}, ErrVendorLocationMissing
	}

	candidates, err := s.couriers.Nearby(ctx, *o.VendorLocation, radiusKm)
	if err != nil {
		return Dispatch{}, err
	}
	profiles, err := s.couriers.GetMany(ctx, candidateIDs(candidates))
	if err != nil {
		return Dispatch{}, err
	}

	// Keep the GEO index's ascending distance order while filtering on
	// profile state.
	selected := make([]types.ID, 0, s.cfg.MaxNotify)
	for _, c := range candidates {
		p, ok := profiles[c.ID]
		if !ok || !p.Eligible() || p.ServiceAreaID != o.ServiceAreaID {
			continue
		}
		selected = append(selected, c.ID)
		if len(selected) == s.cfg.MaxNotify {
			break
		}
	}

	if len(selected) == 0 {
		s.log.Info("no couriers in range", "order_id", orderID, "radius_km", radiusKm, "pass", pass)
		return Dispatch{PartnerIDs: []types.ID{}, NotifiedCount: 0}, nil
	}

	offer := notify.Offer{
		OrderID:            orderID,
		PickupLocation:     *o.VendorLocation,
		ExpandedSearchPass: pass,
	}
	if o.DeliveryLocation != nil {
		if d, err := geo.DistanceKm(*o.VendorLocation, *o.DeliveryLocation); err == nil {
			offer.EstimatedKmToDrop = &d
		}
	}

	if err := s.notifier.Offer(ctx, selected, offer); err != nil {
		return Dispatch{}, err
	}
	if err := s.dispatch.RecordDispatch(ctx, orderID, selected); err != nil {
		// Bookkeeping failure must not undo a sent notification.
		s.log.Warn("dispatch bookkeeping failed", "order_id", orderID, "err", err)
	}

	return Dispatch{PartnerIDs: selected, NotifiedCount: len(selected)}, nil
}

func (s *Service) requireManualAssignment(ctx context.Context, orderID types.ID, attempt int) (Dispatch, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return Dispatch{}, err
	}

	if first, ok, err := s.dispatch.DispatchedAt(ctx, orderID); err == nil && ok {
		s.log.Warn("dispatch exhausted",
			"order_id", orderID, "attempts", attempt, "first_dispatch", first)
	}

	note := fmt.Sprintf("manual assignment required after %d dispatch attempts", attempt)
	if err := s.orders.AppendEvent(ctx, &order.Event{
		OrderID:    orderID,
		FromStatus: o.Status,
		ToStatus:   o.Status,
		ActorType:  "system",
		Note:       &note,
		CreatedAt:  time.Now(),
	}); err != nil {
		return Dispatch{}, err
	}

	return Dispatch{PartnerIDs: []types.ID{}, NotifiedCount: 0}, nil
}

func candidateIDs(candidates []courier.GeoCandidate) []types.ID {
	ids := make([]types.ID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}
