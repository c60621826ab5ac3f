package address

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		valid bool
	}{
		{"origin", 0, 0, true},
		{"springfield", 39.7990, -89.6440, true},
		{"lat north pole", 90, 0, true},
		{"lat south pole", -90, 0, true},
		{"lng antimeridian east", 0, 180, true},
		{"lng antimeridian west", 0, -180, true},
		{"lat above range", 90.0001, 0, false},
		{"lat below range", -91, 0, false},
		{"lng above range", 0, 180.5, false},
		{"lng below range", 0, -181, false},
		{"lat NaN", math.NaN(), 0, false},
		{"lng NaN", 0, math.NaN(), false},
		{"lat +Inf", math.Inf(1), 0, false},
		{"lng -Inf", 0, math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidCoordinates(tt.lat, tt.lng))
			assert.Equal(t, tt.valid, LatLng{Lat: tt.lat, Lng: tt.lng}.Valid())
		})
	}
}

func TestLatLngString(t *testing.T) {
	loc := LatLng{Lat: 40.748817, Lng: -73.985428}
	assert.Equal(t, "40.748817,-73.985428", loc.String())

	// Fixed precision keeps the string stable for cache keying.
	assert.Equal(t, "40.500000,-73.000000", LatLng{Lat: 40.5, Lng: -73}.String())
}

func TestResolvedIsZero(t *testing.T) {
	assert.True(t, Resolved{}.IsZero())

	assert.False(t, Resolved{City: "Springfield"}.IsZero())
	assert.False(t, Resolved{Location: &LatLng{}}.IsZero())
	assert.False(t, Resolved{Viewport: &Viewport{}}.IsZero())
}

func TestResolvedJSON(t *testing.T) {
	r := Resolved{
		StreetAddress: "123 E Main St",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62704",
		Location:      &LatLng{Lat: 39.7990, Lng: -89.6440},
	}

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Resolved
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, r, decoded)

	// Absent coordinates stay absent, not zero-valued.
	raw, err = json.Marshal(Resolved{City: "Springfield"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "location")
}

func TestViewportBounds(t *testing.T) {
	v := Viewport{
		Southwest: LatLng{Lat: 39.78, Lng: -89.66},
		Northeast: LatLng{Lat: 39.82, Lng: -89.62},
	}

	b := v.Bounds()
	assert.InDelta(t, -89.66, b.Min(0), 1e-9)
	assert.InDelta(t, 39.78, b.Min(1), 1e-9)
	assert.InDelta(t, -89.62, b.Max(0), 1e-9)
	assert.InDelta(t, 39.82, b.Max(1), 1e-9)
}
