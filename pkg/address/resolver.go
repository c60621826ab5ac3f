package address

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// Resolver turns raw provider output into Resolved records. It owns two
// independent staleness domains, one per resolution flow: when a newer call
// on a flow starts before an older one finishes, the older result surfaces
// as ErrStale instead of its payload. Create one Resolver per UI call site
// (one picker, one map pin); a shared Resolver would cross-cancel unrelated
// screens.
type Resolver struct {
	provider Provider

	selectionSeq   atomic.Uint64
	coordinatesSeq atomic.Uint64
}

// NewResolver returns a Resolver backed by the given provider. Wrap the
// provider with a CachedProvider when repeated lookups are expected.
func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// ResolveFromSelection hydrates a picked autocomplete prediction into a
// Resolved record. The street line prefers mapped components, then the
// details' formatted address, then the prediction's own description; the
// postal code comes from components alone, matching what the picked place
// actually carries.
func (r *Resolver) ResolveFromSelection(ctx context.Context, prediction Prediction) (Resolved, error) {
	seq := r.selectionSeq.Add(1)

	details, err := r.provider.PlaceDetails(ctx, prediction.PlaceID)
	if err != nil {
		return r.settle(&r.selectionSeq, seq, Resolved{}, err)
	}

	partial := MapComponents(details.Components)
	city, state := partial.CityState()

	street := partial.StreetAddress(details.FormattedAddress)
	if street == "" || isPlusCode(street) {
		// Last resort: the label the user actually picked from the list.
		street = firstSegment(prediction.Description)
	}

	// Provider geometry is untrusted; invalid points are dropped rather
	// than failing a resolution whose text fields are still usable.
	location := details.Location
	if location != nil && !location.Valid() {
		location = nil
	}

	return r.settle(&r.selectionSeq, seq, Resolved{
		StreetAddress: street,
		City:          city,
		State:         state,
		PostalCode:    partial.PostalCode,
		Location:      location,
		Viewport:      details.Viewport,
	}, nil)
}

// ResolveFromCoordinates reverse-geocodes a point into a Resolved record.
// Invalid coordinates fail fast with ErrInvalidCoordinates before any
// provider call; an unknown location yields a zero Resolved and a nil error.
// The record's Location is always the validated input point, not whatever
// centroid the provider snapped to.
func (r *Resolver) ResolveFromCoordinates(ctx context.Context, loc LatLng) (Resolved, error) {
	seq := r.coordinatesSeq.Add(1)

	if !loc.Valid() {
		return Resolved{}, eris.Wrapf(ErrInvalidCoordinates, "lat=%v lng=%v", loc.Lat, loc.Lng)
	}

	candidates, err := r.provider.ReverseGeocode(ctx, loc)
	if err != nil {
		return r.settle(&r.coordinatesSeq, seq, Resolved{}, err)
	}

	best, ok := SelectCandidate(candidates)
	if !ok {
		return r.settle(&r.coordinatesSeq, seq, Resolved{}, nil)
	}

	partial := MapComponents(best.Components)
	city, state := partial.CityState()

	resolved := Resolved{
		StreetAddress: partial.StreetAddress(best.FormattedAddress),
		City:          city,
		State:         state,
		PostalCode:    partial.PostalCode,
		Location:      &LatLng{Lat: loc.Lat, Lng: loc.Lng},
		Viewport:      best.Viewport,
	}
	r.backfillPostalCode(ctx, &resolved, candidates, loc)

	return r.settle(&r.coordinatesSeq, seq, resolved, nil)
}

// settle gates a finished resolution on its flow's sequence counter. A
// result whose sequence is no longer the latest is discarded, errors
// included, so callers never act on output of a superseded request.
func (r *Resolver) settle(latest *atomic.Uint64, seq uint64, resolved Resolved, err error) (Resolved, error) {
	if latest.Load() != seq {
		return Resolved{}, ErrStale
	}
	return resolved, err
}
