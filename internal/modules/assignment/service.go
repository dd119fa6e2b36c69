// README: AssignmentEngine: enforces the single-assignment invariant and
// performs strategy-based courier selection on top of the store's guarded
// transaction.
package assignment

import (
	"context"
	"errors"
	"log/slog"

	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/order"
	"quickcart/internal/types"
)

// ErrNoAvailablePartners is a soft failure: the caller's retry loop treats it
// as "widen the search or go manual", not as a fault.
var ErrNoAvailablePartners = errors.New("no available delivery partners")

type PartnerStore interface {
	Get(ctx context.Context, id types.ID) (*courier.DeliveryPartner, error)
	AvailableByArea(ctx context.Context, areaID types.ID) ([]courier.DeliveryPartner, error)
}

type OrderStore interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	ActiveCountByPartner(ctx context.Context, partnerID types.ID) (int, error)
	AssignPartner(ctx context.Context, orderID, partnerID types.ID) error
}

type Engine struct {
	partners PartnerStore
	orders   OrderStore
	log      *slog.Logger
}

func NewEngine(partners PartnerStore, orders OrderStore, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{partners: partners, orders: orders, log: log}
}

// FindAvailablePartners lists couriers assignable in the area: available,
// with an active linked user.
func (e *Engine) FindAvailablePartners(ctx context.Context, areaID types.ID) ([]courier.DeliveryPartner, error) {
	return e.partners.AvailableByArea(ctx, areaID)
}

// CanAcceptDelivery applies the single-active-delivery policy: available,
// active user, and no order currently in flight.
func (e *Engine) CanAcceptDelivery(ctx context.Context, partnerID types.ID) (bool, error) {
	p, err := e.partners.Get(ctx, partnerID)
	if err != nil {
		if errors.Is(err, courier.ErrPartnerNotFound) {
			return false, nil
		}
		return false, err
	}
	if !p.Eligible() {
		return false, nil
	}
	n, err := e.orders.ActiveCountByPartner(ctx, partnerID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// VerifyAssignmentExclusivity is the fast precheck: the order exists, is
// unassigned, and is ready for pickup. The store transaction re-checks the
// same condition atomically; this only exists to fail early and cheaply.
func (e *Engine) VerifyAssignmentExclusivity(ctx context.Context, orderID types.ID) (bool, error) {
	o, err := e.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return o.DeliveryPartnerID == nil && o.Status == order.StatusReadyForPickup, nil
}

// BestAvailablePartner selects among couriers that pass CanAcceptDelivery.
// Nearest needs distance input from the matcher step; called directly it
// degrades to first-eligible, as does LeastBusy (everyone here has zero
// active deliveries already).
func (e *Engine) BestAvailablePartner(ctx context.Context, areaID types.ID, strategy Strategy) (*courier.DeliveryPartner, error) {
	available, err := e.partners.AvailableByArea(ctx, areaID)
	if err != nil {
		return nil, err
	}

	eligible := make([]courier.DeliveryPartner, 0, len(available))
	for _, p := range available {
		ok, err := e.CanAcceptDelivery(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	best := eligible[0]
	switch strategy {
	case StrategyHighestRated:
		for _, p := range eligible[1:] {
			if p.Rating > best.Rating {
				best = p
			}
		}
	case StrategyRoundRobin:
		for _, p := range eligible[1:] {
			if p.TotalDeliveries < best.TotalDeliveries {
				best = p
			}
		}
	case StrategyNearest, StrategyLeastBusy:
		// First eligible.
	}
	return &best, nil
}

// AutoAssign binds the best available courier to the order. The actual
// mutation set (order fields, history row, courier status) commits atomically
// in the order store; a lost race surfaces as order.ErrPrecondition.
func (e *Engine) AutoAssign(ctx context.Context, orderID types.ID, strategy Strategy) (*courier.DeliveryPartner, error) {
	ok, err := e.VerifyAssignmentExclusivity(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := e.orders.Get(ctx, orderID); errors.Is(err, order.ErrNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, order.ErrPrecondition
	}

	o, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	best, err := e.BestAvailablePartner(ctx, o.ServiceAreaID, strategy)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, ErrNoAvailablePartners
	}

	if err := e.orders.AssignPartner(ctx, orderID, best.ID); err != nil {
		return nil, err
	}

	e.log.Info("order assigned",
		"order_id", orderID, "partner_id", best.ID, "strategy", strategy.String())
	return best, nil
}
