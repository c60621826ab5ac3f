package address

import "context"

// Provider is the port to a geocoding backend. Implementations translate
// transport and provider-status failures into *ProviderError and never panic
// on malformed payloads.
type Provider interface {
	// PlacePredictions returns autocomplete predictions for a free-text
	// query, best first. Debouncing keystrokes is the caller's duty; every
	// call made reaches the backend (or its cache).
	PlacePredictions(ctx context.Context, query string) ([]Prediction, error)

	// PlaceDetails hydrates a prediction's place ID into a full candidate.
	PlaceDetails(ctx context.Context, placeID string) (Candidate, error)

	// ReverseGeocode returns the candidates containing the given point,
	// most specific first. An empty slice with a nil error means the
	// provider knows nothing about the location; it is not a failure.
	ReverseGeocode(ctx context.Context, loc LatLng) ([]Candidate, error)

	// PostalCodeLookup returns the postal code for a point, or "" when the
	// provider has none.
	PostalCodeLookup(ctx context.Context, loc LatLng) (string, error)
}
