package address

// Prediction is one row of a place-autocomplete response: an opaque place ID
// plus the human-readable description shown in a picker.
type Prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// Candidate is one fully-hydrated geocode result, either a place-details
// lookup or one entry of a reverse-geocode list.
type Candidate struct {
	PlaceID          string      `json:"place_id,omitempty"`
	FormattedAddress string      `json:"formatted_address"`
	Components       []Component `json:"address_components"`
	Location         *LatLng     `json:"location,omitempty"`
	Viewport         *Viewport   `json:"viewport,omitempty"`
}

// ComponentValue returns the long name of the first component carrying the
// given type tag, or "".
func (c Candidate) ComponentValue(componentType string) string {
	for _, comp := range c.Components {
		if comp.HasType(componentType) {
			return comp.LongName
		}
	}
	return ""
}

// minSelectableComponents is the richness floor for reverse-geocode
// candidate selection. Results below it are landmarks or areas rather than
// deliverable street addresses.
const minSelectableComponents = 4

// SelectCandidate picks the first reverse-geocode candidate that is rich
// enough to represent a street address: at least minSelectableComponents
// components and a formatted address that does not lead with a Plus-Code
// locator. Providers order candidates most-specific-first, so the first
// qualifying hit is the best one. Falls back to the first candidate when
// none qualify, and returns false only for an empty list.
func SelectCandidate(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if len(c.Components) >= minSelectableComponents && !leadsWithPlusCode(c.FormattedAddress) {
			return c, true
		}
	}
	return candidates[0], true
}
