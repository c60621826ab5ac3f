package googlemaps

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/gatherhall/address-engine/pkg/address"
)

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

type detailsResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Result       placeResult `json:"result"`
}

// PlacePredictions returns autocomplete predictions for a free-text query.
// A blank query short-circuits to no predictions without spending quota.
func (c *Client) PlacePredictions(ctx context.Context, query string) ([]address.Prediction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	const op = "place_predictions"
	return guarded(ctx, c, op, func(ctx context.Context) ([]address.Prediction, error) {
		params := url.Values{"input": {query}}
		var resp autocompleteResponse
		if err := c.get(ctx, op, autocompleteURL, params, &resp); err != nil {
			return nil, err
		}
		if err := apiStatusError(op, resp.Status, resp.ErrorMessage); err != nil {
			return nil, err
		}
		if resp.Status == "ZERO_RESULTS" {
			return nil, nil
		}

		predictions := make([]address.Prediction, 0, len(resp.Predictions))
		for _, p := range resp.Predictions {
			predictions = append(predictions, address.Prediction{
				PlaceID:     p.PlaceID,
				Description: p.Description,
			})
		}
		return predictions, nil
	})
}

// PlaceDetails hydrates a place ID into a full candidate, requesting only
// the component, geometry, and formatted-address field groups. An unknown
// place ID fails with a not_found ProviderError.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (address.Candidate, error) {
	const op = "place_details"
	if placeID == "" {
		return address.Candidate{}, providerErr(op, address.ReasonNotFound, eris.New("googlemaps: empty place id"))
	}

	return guarded(ctx, c, op, func(ctx context.Context) (address.Candidate, error) {
		params := url.Values{
			"place_id": {placeID},
			"fields":   {detailsFields},
		}
		var resp detailsResponse
		if err := c.get(ctx, op, detailsURL, params, &resp); err != nil {
			return address.Candidate{}, err
		}

		// Unlike reverse geocoding, an empty details result means the
		// caller's place ID no longer resolves to anything.
		if resp.Status == "ZERO_RESULTS" {
			return address.Candidate{}, providerErr(op, address.ReasonNotFound, eris.Errorf("googlemaps: status %s", resp.Status))
		}
		if err := apiStatusError(op, resp.Status, resp.ErrorMessage); err != nil {
			return address.Candidate{}, err
		}
		return resp.Result.candidate(), nil
	})
}
