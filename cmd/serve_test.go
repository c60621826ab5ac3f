package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/address-engine/pkg/address"
)

// stubProvider implements address.Provider with per-operation hooks.
type stubProvider struct {
	predictions func(ctx context.Context, query string) ([]address.Prediction, error)
	details     func(ctx context.Context, placeID string) (address.Candidate, error)
	reverse     func(ctx context.Context, loc address.LatLng) ([]address.Candidate, error)
	postal      func(ctx context.Context, loc address.LatLng) (string, error)
}

func (s *stubProvider) PlacePredictions(ctx context.Context, query string) ([]address.Prediction, error) {
	if s.predictions == nil {
		return nil, nil
	}
	return s.predictions(ctx, query)
}

func (s *stubProvider) PlaceDetails(ctx context.Context, placeID string) (address.Candidate, error) {
	if s.details == nil {
		return address.Candidate{}, nil
	}
	return s.details(ctx, placeID)
}

func (s *stubProvider) ReverseGeocode(ctx context.Context, loc address.LatLng) ([]address.Candidate, error) {
	if s.reverse == nil {
		return nil, nil
	}
	return s.reverse(ctx, loc)
}

func (s *stubProvider) PostalCodeLookup(ctx context.Context, loc address.LatLng) (string, error) {
	if s.postal == nil {
		return "", nil
	}
	return s.postal(ctx, loc)
}

func springfieldCandidate() address.Candidate {
	return address.Candidate{
		PlaceID:          "place-123",
		FormattedAddress: "123 E Main St, Springfield, IL 62704, USA",
		Components: []address.Component{
			{Types: []string{"street_number"}, LongName: "123", ShortName: "123"},
			{Types: []string{"route"}, LongName: "East Main Street", ShortName: "E Main St"},
			{Types: []string{"locality", "political"}, LongName: "Springfield", ShortName: "Springfield"},
			{Types: []string{"administrative_area_level_1", "political"}, LongName: "Illinois", ShortName: "IL"},
			{Types: []string{"postal_code"}, LongName: "62704", ShortName: "62704"},
		},
		Location: &address.LatLng{Lat: 39.7990, Lng: -89.6440},
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Healthz(t *testing.T) {
	router := newRouter(&stubProvider{}, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_ResolveSelection(t *testing.T) {
	provider := &stubProvider{
		details: func(_ context.Context, placeID string) (address.Candidate, error) {
			assert.Equal(t, "place-123", placeID)
			return springfieldCandidate(), nil
		},
	}
	router := newRouter(provider, []string{"*"})

	rr := postJSON(t, router, "/v1/resolve/selection", map[string]string{
		"place_id":    "place-123",
		"description": "123 E Main St, Springfield, IL, USA",
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var resolved address.Resolved
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolved))
	assert.Equal(t, "123 East Main Street", resolved.StreetAddress)
	assert.Equal(t, "Springfield", resolved.City)
	assert.Equal(t, "Illinois", resolved.State)
	assert.Equal(t, "62704", resolved.PostalCode)
	require.NotNil(t, resolved.Location)
}

func TestRouter_ResolveSelection_BadRequests(t *testing.T) {
	router := newRouter(&stubProvider{}, []string{"*"})

	rr := postJSON(t, router, "/v1/resolve/selection", map[string]string{"description": "no id"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "place_id is required")

	req := httptest.NewRequest(http.MethodPost, "/v1/resolve/selection", bytes.NewReader([]byte("not json")))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_ResolveSelection_ErrorMapping(t *testing.T) {
	tests := []struct {
		reason string
		status int
	}{
		{address.ReasonNotFound, http.StatusNotFound},
		{address.ReasonQuota, http.StatusServiceUnavailable},
		{address.ReasonNetwork, http.StatusBadGateway},
		{address.ReasonMalformedResponse, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			provider := &stubProvider{
				details: func(_ context.Context, _ string) (address.Candidate, error) {
					return address.Candidate{}, &address.ProviderError{
						Op:     "place_details",
						Reason: tt.reason,
						Err:    eris.New("upstream failure"),
					}
				},
			}
			router := newRouter(provider, []string{"*"})

			rr := postJSON(t, router, "/v1/resolve/selection", map[string]string{"place_id": "p"})
			assert.Equal(t, tt.status, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.reason, body["reason"])
		})
	}
}

func TestRouter_ResolveCoordinates(t *testing.T) {
	provider := &stubProvider{
		reverse: func(_ context.Context, loc address.LatLng) ([]address.Candidate, error) {
			assert.InDelta(t, 39.7990, loc.Lat, 1e-9)
			return []address.Candidate{springfieldCandidate()}, nil
		},
	}
	router := newRouter(provider, []string{"*"})

	rr := postJSON(t, router, "/v1/resolve/coordinates", map[string]float64{
		"lat": 39.7990,
		"lng": -89.6440,
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var resolved address.Resolved
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolved))
	assert.Equal(t, "Springfield", resolved.City)
	require.NotNil(t, resolved.Location)
	assert.InDelta(t, 39.7990, resolved.Location.Lat, 1e-9)
	assert.InDelta(t, -89.6440, resolved.Location.Lng, 1e-9)
}

func TestRouter_ResolveCoordinates_BadRequests(t *testing.T) {
	router := newRouter(&stubProvider{}, []string{"*"})

	// Missing lng.
	rr := postJSON(t, router, "/v1/resolve/coordinates", map[string]float64{"lat": 39.7990})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "lat and lng are required")

	// Out-of-range latitude is rejected by the engine, not the provider.
	rr = postJSON(t, router, "/v1/resolve/coordinates", map[string]float64{"lat": 91, "lng": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid coordinates")
}

func TestRouter_ResolveCoordinates_UnknownLocation(t *testing.T) {
	provider := &stubProvider{
		reverse: func(_ context.Context, _ address.LatLng) ([]address.Candidate, error) {
			return nil, nil
		},
	}
	router := newRouter(provider, []string{"*"})

	rr := postJSON(t, router, "/v1/resolve/coordinates", map[string]float64{"lat": 0.01, "lng": 0.01})

	// An unknown location renders as an empty record, not an error.
	assert.Equal(t, http.StatusOK, rr.Code)

	var resolved address.Resolved
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolved))
	assert.True(t, resolved.IsZero())
}

func TestRouter_RequestID(t *testing.T) {
	router := newRouter(&stubProvider{}, []string{"*"})

	// Generated when absent.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	generated := rr.Header().Get("X-Request-ID")
	require.NotEmpty(t, generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err, "generated request id should be a uuid")

	// Echoed when supplied.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "console-trace-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "console-trace-1", rr.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newRouter(&stubProvider{}, []string{"https://console.gatherhall.com"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/resolve/selection", nil)
	req.Header.Set("Origin", "https://console.gatherhall.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://console.gatherhall.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
