// Package address resolves heterogeneous geocoding provider output into a
// single canonical, validated address record.
package address

import (
	"fmt"
	"math"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair is finite and within range.
func (l LatLng) Valid() bool {
	return ValidCoordinates(l.Lat, l.Lng)
}

// String renders the pair at micro-degree precision, most-significant first.
func (l LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lng)
}

// ValidCoordinates reports whether lat and lng are finite and lie within
// [-90, 90] and [-180, 180]. It is the single gate for every externally
// supplied or provider-returned coordinate pair: callers that fail it must
// treat the coordinates as absent, never keep a partially valid pair.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Resolved is the canonical address record produced by a resolution call.
// Text fields are empty when unresolved; Location is nil when no valid
// coordinate pair was available.
type Resolved struct {
	StreetAddress string    `json:"street_address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postal_code"`
	Location      *LatLng   `json:"location,omitempty"`
	Viewport      *Viewport `json:"viewport,omitempty"`
}

// IsZero reports whether nothing was resolved, the "not found" record
// returned when a reverse geocode yields no candidates.
func (r Resolved) IsZero() bool {
	return r.StreetAddress == "" && r.City == "" && r.State == "" &&
		r.PostalCode == "" && r.Location == nil && r.Viewport == nil
}
