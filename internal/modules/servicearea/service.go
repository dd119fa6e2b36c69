// README: Resolver answers point-in-area queries with a nearest-area fallback,
// read-through cached.
package servicearea

import (
	"context"
	"encoding/json"
	"log/slog"

	"quickcart/internal/cache"
	"quickcart/internal/geo"
	"quickcart/internal/types"
)

type AreaStore interface {
	ListActive(ctx context.Context) ([]ServiceArea, error)
	LinkAddress(ctx context.Context, addressID, areaID types.ID) error
	Create(ctx context.Context, a *ServiceArea) error
	Update(ctx context.Context, a *ServiceArea) error
	Delete(ctx context.Context, id types.ID) error
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Resolver struct {
	store    AreaStore
	cache    *cache.SpatialCache
	geocoder Geocoder
	log      *slog.Logger
}

// NewResolver wires the resolver. geocoder may be nil; address validation
// then requires explicit coordinates.
func NewResolver(store AreaStore, spatialCache *cache.SpatialCache, geocoder Geocoder, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, cache: spatialCache, geocoder: geocoder, log: log}
}

// ResolveForPoint tests the point against every active area. Containment wins;
// otherwise the nearest active area by center distance is reported. A point
// covered by no area is a negative answer, not an error.
func (r *Resolver) ResolveForPoint(ctx context.Context, p types.Point) (Resolution, error) {
	if !geo.Validate(p.Lat, p.Lng) {
		return Resolution{}, geo.ErrInvalidCoordinates
	}

	if payload, ok := r.cache.GetArea(ctx, p); ok {
		var res Resolution
		if err := json.Unmarshal([]byte(payload), &res); err == nil {
			return res, nil
		}
		// Corrupt entry: fall through and recompute.
	}

	areas, err := r.store.ListActive(ctx)
	if err != nil {
		return Resolution{}, err
	}

	res := resolve(p, areas)

	if payload, err := json.Marshal(res); err == nil {
		r.cache.SetArea(ctx, p, string(payload))
	}
	return res, nil
}

func resolve(p types.Point, areas []ServiceArea) Resolution {
	for i := range areas {
		if geo.PointInPolygon(p, areas[i].Boundary) {
			return Resolution{IsServiceable: true, Area: &areas[i]}
		}
	}

	var nearest *ServiceArea
	var nearestKm float64
	for i := range areas {
		d, err := geo.DistanceKm(p, areas[i].Center)
		if err != nil {
			continue
		}
		if nearest == nil || d < nearestKm {
			nearest = &areas[i]
			nearestKm = d
		}
	}
	if nearest == nil {
		return Resolution{IsServiceable: false}
	}
	return Resolution{IsServiceable: false, Nearest: nearest, DistanceKm: &nearestKm}
}

// AddressValidation carries either explicit coordinates or a free-text
// address to geocode.
type AddressValidation struct {
	Point     *types.Point
	Address   string
	AddressID *types.ID
}

// ValidateAddress resolves the address location and, when serviceable and an
// address id was supplied, links the address to the resolved area.
func (r *Resolver) ValidateAddress(ctx context.Context, req AddressValidation) (Resolution, error) {
	p := req.Point
	if p == nil {
		if r.geocoder == nil || req.Address == "" {
			return Resolution{}, geo.ErrInvalidCoordinates
		}
		geocoded, err := r.geocoder.Geocode(ctx, req.Address)
		if err != nil {
			r.log.Warn("geocoding failed", "address", req.Address, "err", err)
			return Resolution{}, geo.ErrInvalidCoordinates
		}
		p = &geocoded
	}

	res, err := r.ResolveForPoint(ctx, *p)
	if err != nil {
		return Resolution{}, err
	}

	if res.IsServiceable && req.AddressID != nil {
		if err := r.store.LinkAddress(ctx, *req.AddressID, res.Area.ID); err != nil {
			return Resolution{}, err
		}
	}
	return res, nil
}

// CreateArea / UpdateArea / DeleteArea are the admin write paths. Every area
// write invalidates all cached resolutions and vendor lookups.

func (r *Resolver) CreateArea(ctx context.Context, a *ServiceArea) error {
	if err := r.store.Create(ctx, a); err != nil {
		return err
	}
	r.cache.InvalidateAreas(ctx)
	return nil
}

func (r *Resolver) UpdateArea(ctx context.Context, a *ServiceArea) error {
	if err := r.store.Update(ctx, a); err != nil {
		return err
	}
	r.cache.InvalidateAreas(ctx)
	return nil
}

func (r *Resolver) DeleteArea(ctx context.Context, id types.ID) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.InvalidateAreas(ctx)
	return nil
}
