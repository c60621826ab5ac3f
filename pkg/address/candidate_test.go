package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streetCandidate() Candidate {
	return Candidate{
		FormattedAddress: "123 E Main St, Springfield, IL 62704, USA",
		Components: []Component{
			comp("123", TypeStreetNumber),
			comp("East Main Street", TypeRoute),
			comp("Springfield", TypeLocality, "political"),
			comp("Illinois", TypeAdminArea1, "political"),
			comp("United States", TypeCountry, "political"),
			comp("62704", TypePostalCode),
		},
	}
}

func plusCodeCandidate() Candidate {
	return Candidate{
		FormattedAddress: "8GXX+PH Springfield, IL, USA",
		Components: []Component{
			comp("Springfield", TypeLocality, "political"),
			comp("Illinois", TypeAdminArea1, "political"),
			comp("United States", TypeCountry, "political"),
			comp("62704", TypePostalCode),
		},
	}
}

func areaCandidate() Candidate {
	return Candidate{
		FormattedAddress: "Springfield, IL, USA",
		Components: []Component{
			comp("Springfield", TypeLocality, "political"),
			comp("Illinois", TypeAdminArea1, "political"),
			comp("United States", TypeCountry, "political"),
		},
	}
}

func TestSelectCandidate_Empty(t *testing.T) {
	_, ok := SelectCandidate(nil)
	assert.False(t, ok)

	_, ok = SelectCandidate([]Candidate{})
	assert.False(t, ok)
}

func TestSelectCandidate_FirstQualifyingWins(t *testing.T) {
	street := streetCandidate()
	got, ok := SelectCandidate([]Candidate{street, areaCandidate()})
	require.True(t, ok)
	assert.Equal(t, street.FormattedAddress, got.FormattedAddress)
}

func TestSelectCandidate_SkipsPlusCodeLeader(t *testing.T) {
	// Reverse geocoding a rooftop often returns a Plus-Code entry first;
	// the street-level entry behind it is the one worth keeping.
	street := streetCandidate()
	got, ok := SelectCandidate([]Candidate{plusCodeCandidate(), street})
	require.True(t, ok)
	assert.Equal(t, street.FormattedAddress, got.FormattedAddress)
}

func TestSelectCandidate_SkipsThinCandidates(t *testing.T) {
	street := streetCandidate()
	got, ok := SelectCandidate([]Candidate{areaCandidate(), street})
	require.True(t, ok)
	assert.Equal(t, street.FormattedAddress, got.FormattedAddress)
}

func TestSelectCandidate_FallsBackToFirst(t *testing.T) {
	// Nothing qualifies: a degraded first candidate beats an empty record.
	plus := plusCodeCandidate()
	got, ok := SelectCandidate([]Candidate{plus, areaCandidate()})
	require.True(t, ok)
	assert.Equal(t, plus.FormattedAddress, got.FormattedAddress)
}

func TestCandidateComponentValue(t *testing.T) {
	c := streetCandidate()
	assert.Equal(t, "62704", c.ComponentValue(TypePostalCode))
	assert.Equal(t, "Springfield", c.ComponentValue(TypeLocality))
	assert.Equal(t, "", c.ComponentValue(TypeSublocality))
	assert.Equal(t, "", Candidate{}.ComponentValue(TypePostalCode))
}
