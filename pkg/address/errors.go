package address

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Failure reasons carried by ProviderError. Callers branch on these to pick
// retry and messaging behavior without parsing provider-specific strings.
const (
	ReasonNetwork           = "network"
	ReasonQuota             = "quota"
	ReasonNotFound          = "not_found"
	ReasonMalformedResponse = "malformed_response"
)

// ErrInvalidCoordinates is returned when a latitude/longitude pair is
// rejected before any provider call is made.
var ErrInvalidCoordinates = eris.New("address: invalid coordinates")

// ErrStale marks a resolution that finished after a newer request in the
// same flow started. Callers drop stale results instead of rendering them.
var ErrStale = eris.New("address: resolution superseded")

// ProviderError wraps a failed provider call with the operation that failed
// and a coarse machine-readable reason.
type ProviderError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("address: %s failed (%s)", e.Op, e.Reason)
	}
	return fmt.Sprintf("address: %s failed (%s): %v", e.Op, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// FailReason extracts the ProviderError reason from err, or "" when err is
// nil or not provider-originated.
func FailReason(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
