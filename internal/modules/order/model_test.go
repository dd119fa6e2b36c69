package order

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusReadyForPickup, StatusAssigned, true},
		{StatusReadyForPickup, StatusCancelled, true},
		{StatusAssigned, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusPending, StatusAssigned, false},
		{StatusAssigned, StatusReadyForPickup, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusCancelled, StatusAssigned, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusIsActive(t *testing.T) {
	active := []Status{StatusAssigned, StatusPickedUp, StatusInTransit}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("%s should be active", s)
		}
	}
	inactive := []Status{StatusPending, StatusReadyForPickup, StatusDelivered, StatusCancelled}
	for _, s := range inactive {
		if s.IsActive() {
			t.Errorf("%s should not be active", s)
		}
	}
}
