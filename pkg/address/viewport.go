package address

import "github.com/twpayne/go-geom"

// Viewport is the provider-recommended bounding box for displaying a result.
// Map pickers fit their view to it after a resolution.
type Viewport struct {
	Southwest LatLng `json:"southwest"`
	Northeast LatLng `json:"northeast"`
}

// Bounds converts the viewport to a go-geom bounding box in XY layout
// (X = longitude, Y = latitude).
func (v Viewport) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(
		v.Southwest.Lng, v.Southwest.Lat,
		v.Northeast.Lng, v.Northeast.Lat,
	)
}
