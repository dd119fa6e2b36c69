// README: Shared value types used across modules.
package types

// ID is an opaque entity identifier (UUID or external key).
type ID string

// Point is a WGS 84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
