// Package geo contains pure geographic computation helpers: coordinate
// validation, great-circle distance, ETA arithmetic, and polygon containment.
package geo

import (
	"errors"
	"fmt"
	"math"

	"quickcart/internal/types"
)

const earthRadiusKm = 6371.0

const (
	// avgCourierSpeedKmh is the fixed average speed assumed for ETA estimates.
	avgCourierSpeedKmh = 30.0
	// etaBufferMinutes is added to every estimate for pickup/handoff overhead.
	etaBufferMinutes = 5
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Validate reports whether lat/lng fall within WGS 84 bounds, inclusive.
func Validate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// DistanceKm returns the great-circle distance between two points, rounded to
// two decimal places. Both points must pass Validate.
func DistanceKm(a, b types.Point) (float64, error) {
	if !Validate(a.Lat, a.Lng) || !Validate(b.Lat, b.Lng) {
		return 0, ErrInvalidCoordinates
	}
	return round2(haversineKm(a.Lat, a.Lng, b.Lat, b.Lng)), nil
}

// ETAMinutes converts a distance into estimated minutes of travel at the
// fixed average speed, rounded up, plus the fixed buffer.
func ETAMinutes(distanceKm float64) int {
	travel := math.Ceil(distanceKm / avgCourierSpeedKmh * 60)
	return int(travel) + etaBufferMinutes
}

// FormatETA renders an ETA for display. Sub-kilometre distances collapse to
// "Arriving soon" regardless of the minute estimate.
func FormatETA(etaMinutes int, distanceKm float64) string {
	if distanceKm < 1 {
		return "Arriving soon"
	}
	if etaMinutes < 60 {
		return fmt.Sprintf("%d min", etaMinutes)
	}
	return fmt.Sprintf("%dh %dm", etaMinutes/60, etaMinutes%60)
}

// PointInPolygon reports whether p lies inside the polygon using the ray
// casting rule. The polygon is an ordered ring; it need not be closed.
// A point on an edge or vertex counts as inside: ray casting alone is
// edge-dependent there, so the boundary is checked explicitly first.
func PointInPolygon(p types.Point, polygon []types.Point) bool {
	if len(polygon) < 3 {
		return false
	}
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		if onSegment(p, polygon[i], polygon[j]) {
			return true
		}
		j = i
	}

	inside := false
	j = len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Lng > p.Lng) != (vj.Lng > p.Lng) {
			cross := (vj.Lat-vi.Lat)*(p.Lng-vi.Lng)/(vj.Lng-vi.Lng) + vi.Lat
			if p.Lat < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

const collinearEpsilon = 1e-9

// onSegment reports whether p lies on the segment ab, within a small
// tolerance for floating point error.
func onSegment(p, a, b types.Point) bool {
	cross := (b.Lat-a.Lat)*(p.Lng-a.Lng) - (b.Lng-a.Lng)*(p.Lat-a.Lat)
	if math.Abs(cross) > collinearEpsilon {
		return false
	}
	return p.Lat >= math.Min(a.Lat, b.Lat)-collinearEpsilon &&
		p.Lat <= math.Max(a.Lat, b.Lat)+collinearEpsilon &&
		p.Lng >= math.Min(a.Lng, b.Lng)-collinearEpsilon &&
		p.Lng <= math.Max(a.Lng, b.Lng)+collinearEpsilon
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
