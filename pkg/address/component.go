package address

import (
	"regexp"
	"strings"
)

// Component type tags used by the geocoding provider's taxonomy.
const (
	TypeStreetNumber      = "street_number"
	TypeRoute             = "route"
	TypeLocality          = "locality"
	TypeSublocality       = "sublocality"
	TypeSublocalityLevel1 = "sublocality_level_1"
	TypeAdminArea1        = "administrative_area_level_1"
	TypeCountry           = "country"
	TypePostalCode        = "postal_code"
)

// Component is one taxonomy-tagged value from a geocode result. It is
// provider-owned and immutable; a component may carry several type tags.
type Component struct {
	Types     []string `json:"types"`
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
}

// HasType reports whether the component carries the given type tag.
func (c Component) HasType(componentType string) bool {
	for _, t := range c.Types {
		if t == componentType {
			return true
		}
	}
	return false
}

// Partial is the structured address extracted from a component list.
// Fields are empty when the provider supplied no matching component.
type Partial struct {
	StreetNumber string
	Route        string
	Sublocality  string
	Locality     string
	AdminArea1   string
	Country      string
	PostalCode   string
}

// MapComponents extracts a Partial from a component list in a single pass.
// The first value seen for each slot wins; providers order components
// most-specific-first, so no re-sorting is performed. The one exception is
// the Sublocality slot: sublocality and sublocality_level_1 are equivalent,
// every match reassigns it, and with most-specific-first ordering the
// broadest sublocality is the one that sticks.
func MapComponents(components []Component) Partial {
	var p Partial
	for _, c := range components {
		if p.StreetNumber == "" && c.HasType(TypeStreetNumber) {
			p.StreetNumber = c.LongName
		}
		if p.Route == "" && c.HasType(TypeRoute) {
			p.Route = c.LongName
		}
		if c.HasType(TypeSublocality) || c.HasType(TypeSublocalityLevel1) {
			p.Sublocality = c.LongName
		}
		if p.Locality == "" && c.HasType(TypeLocality) {
			p.Locality = c.LongName
		}
		if p.AdminArea1 == "" && c.HasType(TypeAdminArea1) {
			p.AdminArea1 = c.LongName
		}
		if p.Country == "" && c.HasType(TypeCountry) {
			p.Country = c.LongName
		}
		if p.PostalCode == "" && c.HasType(TypePostalCode) {
			p.PostalCode = c.LongName
		}
	}
	return p
}

// CityState resolves the city and state fields under a single rule. US-style
// results expose a locality; many international results omit it and fall back
// to the administrative area, sublocality, and country.
func (p Partial) CityState() (city, state string) {
	if p.Locality != "" {
		state = p.AdminArea1
		if state == "" {
			state = p.Country
		}
		return p.Locality, state
	}
	city = p.AdminArea1
	if city == "" {
		city = p.Sublocality
	}
	return city, p.Country
}

// StreetAddress builds the street line. With no street_number or route
// components it falls back to the first comma-delimited segment of the
// formatted address, dropping a leading Plus-Code segment. Returns "" when
// nothing usable remains; callers decide whether to prompt the user.
func (p Partial) StreetAddress(fallbackFormatted string) string {
	if p.StreetNumber != "" && p.Route != "" {
		return p.StreetNumber + " " + p.Route
	}
	if p.Route != "" {
		return p.Route
	}

	segments := addressSegments(fallbackFormatted)
	if len(segments) > 0 && isPlusCode(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// plusCodeRE matches a Plus-Code locator at the start of a segment: four
// alphanumerics, a plus sign, then at least two more. Compound codes such as
// "8GXX+PH Springfield" match too.
var plusCodeRE = regexp.MustCompile(`^[A-Za-z0-9]{4}\+[A-Za-z0-9]{2,}`)

// isPlusCode reports whether the segment begins with a Plus-Code locator.
func isPlusCode(segment string) bool {
	return plusCodeRE.MatchString(segment)
}

// leadsWithPlusCode reports whether the first comma-delimited segment of a
// formatted address is Plus-Code-shaped.
func leadsWithPlusCode(formatted string) bool {
	segments := addressSegments(formatted)
	return len(segments) > 0 && isPlusCode(segments[0])
}

// addressSegments splits a formatted address on commas, trimming whitespace
// and discarding empty segments.
func addressSegments(formatted string) []string {
	var segments []string
	for _, segment := range strings.Split(formatted, ",") {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// firstSegment returns the first comma-delimited segment of s, or "".
func firstSegment(s string) string {
	if segments := addressSegments(s); len(segments) > 0 {
		return segments[0]
	}
	return ""
}
