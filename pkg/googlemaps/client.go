// Package googlemaps implements the address.Provider port against the
// Google Maps Platform web services: Place Autocomplete, Place Details, and
// the Geocoding API.
package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/gatherhall/address-engine/internal/resilience"
	"github.com/gatherhall/address-engine/pkg/address"
)

const (
	autocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
	detailsURL      = "https://maps.googleapis.com/maps/api/place/details/json"
	geocodeURL      = "https://maps.googleapis.com/maps/api/geocode/json"
)

// detailsFields trims a Place Details response to what resolution needs;
// every extra field group bills separately.
const detailsFields = "address_component,formatted_address,geometry"

// Client calls the Google Maps web services and translates their responses
// into the address package's types. It implements address.Provider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
	retry      resilience.RetryConfig
	language   string
	region     string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second ceiling across all operations.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy for transient upstream failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithBreaker guards every operation with the given circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithLanguage requests localized results, e.g. "en".
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithRegion biases results toward a ccTLD region, e.g. "us".
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(50, 50), // Maps Platform default quota
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one rate-limited request and decodes the body into out.
// Transport failures, bad HTTP statuses, and undecodable bodies all come
// back as *address.ProviderError.
func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		return providerErr(op, address.ReasonMalformedResponse, eris.New("googlemaps: api key not configured"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return providerErr(op, address.ReasonNetwork, eris.Wrap(err, "googlemaps: rate limit"))
	}

	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return providerErr(op, address.ReasonMalformedResponse, eris.Wrap(err, "googlemaps: build request"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return providerErr(op, address.ReasonNetwork, eris.Wrap(err, "googlemaps: request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return providerErr(op, address.ReasonQuota, eris.Errorf("googlemaps: returned status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return providerErr(op, address.ReasonNetwork, eris.Errorf("googlemaps: returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return providerErr(op, address.ReasonMalformedResponse, eris.Errorf("googlemaps: returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return providerErr(op, address.ReasonNetwork, eris.Wrap(err, "googlemaps: read body"))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return providerErr(op, address.ReasonMalformedResponse, eris.Wrap(err, "googlemaps: parse response"))
	}
	return nil
}

// apiStatusError maps a failing API status to a ProviderError. OK and
// ZERO_RESULTS return nil; their meaning depends on the operation.
func apiStatusError(op, status, message string) error {
	var reason string
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "RESOURCE_EXHAUSTED":
		reason = address.ReasonQuota
	case "NOT_FOUND":
		reason = address.ReasonNotFound
	case "UNKNOWN_ERROR":
		// Documented as transient server-side; a retry may succeed.
		reason = address.ReasonNetwork
	default:
		// INVALID_REQUEST, REQUEST_DENIED, and anything Google adds later.
		reason = address.ReasonMalformedResponse
	}

	err := eris.Errorf("googlemaps: status %s", status)
	if message != "" {
		err = eris.Errorf("googlemaps: status %s: %s", status, message)
	}
	return providerErr(op, reason, err)
}

func providerErr(op, reason string, err error) *address.ProviderError {
	return &address.ProviderError{Op: op, Reason: reason, Err: err}
}

// guarded runs fetch under the client's retry policy and, when configured,
// its circuit breaker. A refusal by an open breaker surfaces as a network
// ProviderError so callers branch on the usual taxonomy.
func guarded[T any](ctx context.Context, c *Client, op string, fetch func(ctx context.Context) (T, error)) (T, error) {
	run := func(ctx context.Context) (T, error) {
		return resilience.DoVal(ctx, c.retryPolicy(op), fetch)
	}
	if c.breaker == nil {
		return run(ctx)
	}

	out, err := resilience.Call(ctx, c.breaker, run)
	if errors.Is(err, resilience.ErrBreakerOpen) {
		return out, providerErr(op, address.ReasonNetwork, err)
	}
	return out, err
}

func (c *Client) retryPolicy(op string) resilience.RetryConfig {
	cfg := c.retry
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.LogRetries(op)
	return cfg
}

// retryable spends retries only on failures a fresh attempt could fix.
func retryable(err error) bool {
	switch address.FailReason(err) {
	case address.ReasonNetwork, address.ReasonQuota:
		return true
	default:
		return false
	}
}

// Wire shapes shared by the Places and Geocoding endpoints. The component
// list decodes straight into address.Component; its JSON tags mirror the
// provider's field names.

type wirePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type wireGeometry struct {
	Location *wirePoint `json:"location"`
	Viewport *struct {
		Northeast wirePoint `json:"northeast"`
		Southwest wirePoint `json:"southwest"`
	} `json:"viewport"`
}

type placeResult struct {
	PlaceID           string              `json:"place_id"`
	FormattedAddress  string              `json:"formatted_address"`
	AddressComponents []address.Component `json:"address_components"`
	Geometry          wireGeometry        `json:"geometry"`
}

// candidate converts a wire result into the engine's candidate type.
func (res placeResult) candidate() address.Candidate {
	c := address.Candidate{
		PlaceID:          res.PlaceID,
		FormattedAddress: res.FormattedAddress,
		Components:       res.AddressComponents,
	}
	if loc := res.Geometry.Location; loc != nil {
		c.Location = &address.LatLng{Lat: loc.Lat, Lng: loc.Lng}
	}
	if vp := res.Geometry.Viewport; vp != nil {
		c.Viewport = &address.Viewport{
			Southwest: address.LatLng{Lat: vp.Southwest.Lat, Lng: vp.Southwest.Lng},
			Northeast: address.LatLng{Lat: vp.Northeast.Lat, Lng: vp.Northeast.Lng},
		}
	}
	return c
}
