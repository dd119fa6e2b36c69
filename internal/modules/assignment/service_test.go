package assignment

import (
	"context"
	"sync"
	"testing"

	"quickcart/internal/modules/courier"
	"quickcart/internal/modules/order"
	"quickcart/internal/types"
)

type fakePartnerStore struct {
	partners map[types.ID]*courier.DeliveryPartner
	byArea   map[types.ID][]types.ID
}

func (f *fakePartnerStore) Get(ctx context.Context, id types.ID) (*courier.DeliveryPartner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, courier.ErrPartnerNotFound
	}
	return p, nil
}

func (f *fakePartnerStore) AvailableByArea(ctx context.Context, areaID types.ID) ([]courier.DeliveryPartner, error) {
	var out []courier.DeliveryPartner
	for _, id := range f.byArea[areaID] {
		p := f.partners[id]
		if p.Status == courier.StatusAvailable && p.UserStatus == "active" {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeOrderStore enforces the same compare-and-swap semantics as the real
// transaction, so races can be exercised without a database.
type fakeOrderStore struct {
	mu          sync.Mutex
	orders      map[types.ID]*order.Order
	activeCount map[types.ID]int
	partners    *fakePartnerStore
}

func (f *fakeOrderStore) Get(ctx context.Context, id types.ID) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) ActiveCountByPartner(ctx context.Context, partnerID types.ID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeCount[partnerID], nil
}

func (f *fakeOrderStore) AssignPartner(ctx context.Context, orderID, partnerID types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	if o.DeliveryPartnerID != nil || o.Status != order.StatusReadyForPickup {
		return order.ErrPrecondition
	}
	p, ok := f.partners.partners[partnerID]
	if !ok || p.Status != courier.StatusAvailable {
		return order.ErrPrecondition
	}
	pid := partnerID
	o.DeliveryPartnerID = &pid
	o.Status = order.StatusAssigned
	p.Status = courier.StatusBusy
	f.activeCount[partnerID]++
	return nil
}

func partner(id types.ID, area types.ID, rating float64, deliveries int) *courier.DeliveryPartner {
	return &courier.DeliveryPartner{
		ID:              id,
		Status:          courier.StatusAvailable,
		UserStatus:      "active",
		Rating:          rating,
		TotalDeliveries: deliveries,
		ServiceAreaID:   area,
	}
}

func fixture() (*fakePartnerStore, *fakeOrderStore, *Engine) {
	partners := &fakePartnerStore{
		partners: map[types.ID]*courier.DeliveryPartner{
			"p_first":  partner("p_first", "area_1", 4.2, 120),
			"p_rated":  partner("p_rated", "area_1", 4.9, 200),
			"p_rookie": partner("p_rookie", "area_1", 4.0, 3),
		},
		byArea: map[types.ID][]types.ID{
			"area_1": {"p_first", "p_rated", "p_rookie"},
		},
	}
	orders := &fakeOrderStore{
		orders: map[types.ID]*order.Order{
			"o1": {ID: "o1", Status: order.StatusReadyForPickup, ServiceAreaID: "area_1"},
		},
		activeCount: map[types.ID]int{},
		partners:    partners,
	}
	return partners, orders, NewEngine(partners, orders, nil)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyNearest, false},
		{"nearest", StrategyNearest, false},
		{"least_busy", StrategyLeastBusy, false},
		{"highest_rated", StrategyHighestRated, false},
		{"round_robin", StrategyRoundRobin, false},
		{"fastest", StrategyNearest, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanAcceptDelivery(t *testing.T) {
	partners, orders, engine := fixture()
	ctx := context.Background()

	ok, err := engine.CanAcceptDelivery(ctx, "p_first")
	if err != nil || !ok {
		t.Fatalf("expected acceptable, got ok=%v err=%v", ok, err)
	}

	partners.partners["p_first"].Status = courier.StatusBusy
	if ok, _ := engine.CanAcceptDelivery(ctx, "p_first"); ok {
		t.Error("busy courier must not accept")
	}
	partners.partners["p_first"].Status = courier.StatusAvailable

	partners.partners["p_first"].UserStatus = "suspended"
	if ok, _ := engine.CanAcceptDelivery(ctx, "p_first"); ok {
		t.Error("suspended user must not accept")
	}
	partners.partners["p_first"].UserStatus = "active"

	orders.activeCount["p_first"] = 1
	if ok, _ := engine.CanAcceptDelivery(ctx, "p_first"); ok {
		t.Error("courier with an active order must not accept another")
	}

	if ok, err := engine.CanAcceptDelivery(ctx, "ghost"); err != nil || ok {
		t.Errorf("unknown courier: ok=%v err=%v, want false,nil", ok, err)
	}
}

func TestVerifyAssignmentExclusivity(t *testing.T) {
	_, orders, engine := fixture()
	ctx := context.Background()

	if ok, _ := engine.VerifyAssignmentExclusivity(ctx, "o1"); !ok {
		t.Error("unassigned ready order should pass")
	}

	pid := types.ID("p_first")
	orders.orders["o1"].DeliveryPartnerID = &pid
	if ok, _ := engine.VerifyAssignmentExclusivity(ctx, "o1"); ok {
		t.Error("assigned order must fail the precheck")
	}
	orders.orders["o1"].DeliveryPartnerID = nil

	orders.orders["o1"].Status = order.StatusPreparing
	if ok, _ := engine.VerifyAssignmentExclusivity(ctx, "o1"); ok {
		t.Error("order not ready for pickup must fail the precheck")
	}

	if ok, _ := engine.VerifyAssignmentExclusivity(ctx, "ghost"); ok {
		t.Error("missing order must fail the precheck")
	}
}

func TestBestAvailablePartner_Strategies(t *testing.T) {
	_, _, engine := fixture()
	ctx := context.Background()

	tests := []struct {
		strategy Strategy
		want     types.ID
	}{
		{StrategyHighestRated, "p_rated"},
		{StrategyRoundRobin, "p_rookie"},
		{StrategyNearest, "p_first"},
		{StrategyLeastBusy, "p_first"},
	}
	for _, tt := range tests {
		got, err := engine.BestAvailablePartner(ctx, "area_1", tt.strategy)
		if err != nil {
			t.Fatalf("%v: %v", tt.strategy, err)
		}
		if got == nil || got.ID != tt.want {
			t.Errorf("%v picked %v, want %s", tt.strategy, got, tt.want)
		}
	}
}

func TestBestAvailablePartner_NoneEligible(t *testing.T) {
	partners, _, engine := fixture()
	for _, p := range partners.partners {
		p.Status = courier.StatusOffline
	}

	got, err := engine.BestAvailablePartner(context.Background(), "area_1", StrategyNearest)
	if err != nil {
		t.Fatalf("BestAvailablePartner: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestAutoAssign_HappyPath(t *testing.T) {
	partners, orders, engine := fixture()

	got, err := engine.AutoAssign(context.Background(), "o1", StrategyHighestRated)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if got.ID != "p_rated" {
		t.Errorf("assigned %s, want p_rated", got.ID)
	}

	o := orders.orders["o1"]
	if o.Status != order.StatusAssigned || o.DeliveryPartnerID == nil || *o.DeliveryPartnerID != "p_rated" {
		t.Errorf("order not mutated atomically: %+v", o)
	}
	if partners.partners["p_rated"].Status != courier.StatusBusy {
		t.Error("assigned courier must flip to busy")
	}
}

func TestAutoAssign_PreconditionFailed(t *testing.T) {
	_, orders, engine := fixture()
	pid := types.ID("p_first")
	orders.orders["o1"].DeliveryPartnerID = &pid
	orders.orders["o1"].Status = order.StatusAssigned

	_, err := engine.AutoAssign(context.Background(), "o1", StrategyNearest)
	if err != order.ErrPrecondition {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestAutoAssign_OrderMissing(t *testing.T) {
	_, _, engine := fixture()

	_, err := engine.AutoAssign(context.Background(), "ghost", StrategyNearest)
	if err != order.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAutoAssign_NoAvailablePartners(t *testing.T) {
	partners, _, engine := fixture()
	for _, p := range partners.partners {
		p.Status = courier.StatusBusy
	}

	_, err := engine.AutoAssign(context.Background(), "o1", StrategyNearest)
	if err != ErrNoAvailablePartners {
		t.Fatalf("expected ErrNoAvailablePartners, got %v", err)
	}
}

func TestAutoAssign_SecondAttemptLosesRace(t *testing.T) {
	_, _, engine := fixture()
	ctx := context.Background()

	if _, err := engine.AutoAssign(ctx, "o1", StrategyNearest); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	_, err := engine.AutoAssign(ctx, "o1", StrategyNearest)
	if err != order.ErrPrecondition {
		t.Fatalf("expected ErrPrecondition for the loser, got %v", err)
	}
}
