package googlemaps

import (
	"context"
	"net/url"

	"github.com/gatherhall/address-engine/pkg/address"
)

type geocodeResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

// ReverseGeocode returns the candidates containing the given point, most
// specific first. A location the provider knows nothing about yields an
// empty slice and a nil error.
func (c *Client) ReverseGeocode(ctx context.Context, loc address.LatLng) ([]address.Candidate, error) {
	const op = "reverse_geocode"
	return guarded(ctx, c, op, func(ctx context.Context) ([]address.Candidate, error) {
		params := url.Values{"latlng": {loc.String()}}
		var resp geocodeResponse
		if err := c.get(ctx, op, geocodeURL, params, &resp); err != nil {
			return nil, err
		}
		if err := apiStatusError(op, resp.Status, resp.ErrorMessage); err != nil {
			return nil, err
		}
		if resp.Status == "ZERO_RESULTS" {
			return nil, nil
		}

		candidates := make([]address.Candidate, 0, len(resp.Results))
		for _, res := range resp.Results {
			candidates = append(candidates, res.candidate())
		}
		return candidates, nil
	})
}

// PostalCodeLookup runs the narrower postal_code-scoped reverse geocode and
// returns the first result's postal code, or "" when the provider has none.
func (c *Client) PostalCodeLookup(ctx context.Context, loc address.LatLng) (string, error) {
	const op = "postal_lookup"
	return guarded(ctx, c, op, func(ctx context.Context) (string, error) {
		params := url.Values{
			"latlng":      {loc.String()},
			"result_type": {"postal_code"},
		}
		var resp geocodeResponse
		if err := c.get(ctx, op, geocodeURL, params, &resp); err != nil {
			return "", err
		}
		if err := apiStatusError(op, resp.Status, resp.ErrorMessage); err != nil {
			return "", err
		}
		if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
			return "", nil
		}
		return resp.Results[0].candidate().ComponentValue(address.TypePostalCode), nil
	})
}
