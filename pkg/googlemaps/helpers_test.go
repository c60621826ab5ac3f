package googlemaps

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"golang.org/x/time/rate"

	"github.com/gatherhall/address-engine/internal/resilience"
)

const apiHost = "https://maps.googleapis.com"

// newTestLimiter creates a rate limiter that effectively does not limit.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// newRewriteClient creates an HTTP client that redirects every Maps API
// request to a test server, preserving the endpoint path so one handler can
// serve autocomplete, details, and geocode.
func newRewriteClient(testServerURL string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:   http.DefaultTransport,
			target: testServerURL,
		},
	}
}

type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	orig := req.URL.String()
	if !strings.HasPrefix(orig, apiHost) {
		return t.base.RoundTrip(req)
	}
	parsed, err := req.URL.Parse(t.target + orig[len(apiHost):])
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.URL = parsed
	clone.Host = parsed.Host
	return t.base.RoundTrip(clone)
}

// newTestGoogle builds a Client aimed at the test server with retries off.
func newTestGoogle(srv *httptest.Server) *Client {
	return &Client{
		apiKey:     "test-key",
		httpClient: newRewriteClient(srv.URL),
		limiter:    newTestLimiter(),
		retry:      resilience.RetryConfig{Attempts: 1},
	}
}
