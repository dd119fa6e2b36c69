// README: Service area model: a named polygon within which matching happens.
package servicearea

import (
	"quickcart/internal/types"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type ServiceArea struct {
	ID       types.ID      `json:"id"`
	Name     string        `json:"name"`
	Boundary []types.Point `json:"boundary"`
	Center   types.Point   `json:"center"`
	Status   Status        `json:"status"`
}

// Resolution answers "is this point serviceable, and by which area". When the
// point is outside every active area, Nearest and DistanceKm describe the
// closest one by center distance.
type Resolution struct {
	IsServiceable bool         `json:"is_serviceable"`
	Area          *ServiceArea `json:"service_area,omitempty"`
	Nearest       *ServiceArea `json:"nearest_service_area,omitempty"`
	DistanceKm    *float64     `json:"distance_km,omitempty"`
}
