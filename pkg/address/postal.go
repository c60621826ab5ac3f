package address

import (
	"context"

	"go.uber.org/zap"
)

// backfillPostalCode fills resolved.PostalCode when component mapping left it
// empty. Sibling candidates are scanned first; only when they carry nothing
// is a dedicated provider lookup spent. Lookup failures are logged and
// swallowed: a missing postal code degrades the record, it must not sink the
// resolution.
func (r *Resolver) backfillPostalCode(ctx context.Context, resolved *Resolved, siblings []Candidate, loc LatLng) {
	if resolved.PostalCode != "" {
		return
	}
	if code := postalCodeFromCandidates(siblings); code != "" {
		resolved.PostalCode = code
		return
	}
	code, err := r.provider.PostalCodeLookup(ctx, loc)
	if err != nil {
		zap.L().Warn("postal code lookup failed, continuing without",
			zap.String("location", loc.String()),
			zap.Error(err))
		return
	}
	resolved.PostalCode = code
}

// postalCodeFromCandidates returns the first postal_code component found in
// the candidate list, or "".
func postalCodeFromCandidates(candidates []Candidate) string {
	for _, c := range candidates {
		if code := c.ComponentValue(TypePostalCode); code != "" {
			return code
		}
	}
	return ""
}
