package nfl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTeam(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Full name", input: "Kansas City Chiefs", expected: "KC"},
		{name: "Nickname", input: "Chiefs", expected: "KC"},
		{name: "Abbreviation passes through", input: "KC", expected: "KC"},
		{name: "Lowercase", input: "chiefs", expected: "KC"},
		{name: "Whitespace", input: "  Buffalo Bills  ", expected: "BUF"},
		{name: "Sleeper Washington code", input: "WAS", expected: "WSH"},
		{name: "Sleeper Jacksonville code", input: "JAC", expected: "JAX"},
		{name: "Bare LA maps to Rams", input: "LA", expected: "LAR"},
		{name: "City only", input: "Green Bay", expected: "GB"},
		{name: "Last token fallback", input: "St. Louis Rams", expected: "LAR"},
		{name: "Numeric nickname", input: "San Francisco 49ers", expected: "SF"},
		{name: "Unknown passes through uppercased", input: "London Monarchs", expected: "LONDON MONARCHS"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveTeam(tt.input))
		})
	}
}

func TestResolveTeamIdempotent(t *testing.T) {
	inputs := []string{
		"Kansas City Chiefs", "Chiefs", "KC", "was", "New York Jets",
		"London Monarchs", "", "49ers", "LA",
	}
	for _, in := range inputs {
		once := ResolveTeam(in)
		assert.Equal(t, once, ResolveTeam(once), "resolve(resolve(%q))", in)
	}
}

func TestResolveTeamCoversAllFranchises(t *testing.T) {
	// Every canonical abbreviation must resolve to itself and carry a venue.
	for abbr := range Stadiums {
		assert.Equal(t, abbr, ResolveTeam(abbr))
	}
	assert.Len(t, Stadiums, 32)
}

func TestTeamsMatch(t *testing.T) {
	assert.True(t, TeamsMatch("Chiefs", "KANSAS CITY CHIEFS"))
	assert.True(t, TeamsMatch("was", "Commanders"))
	assert.False(t, TeamsMatch("Jets", "Giants"))
}

func TestIsDomeTeam(t *testing.T) {
	assert.True(t, IsDomeTeam("Lions"))
	assert.True(t, IsDomeTeam("NO"))
	assert.False(t, IsDomeTeam("GB"))
	assert.False(t, IsDomeTeam("unknown team"))
}

func TestParsePosition(t *testing.T) {
	pos, ok := ParsePosition("DEF")
	assert.True(t, ok)
	assert.Equal(t, PositionDST, pos)

	pos, ok = ParsePosition("QB")
	assert.True(t, ok)
	assert.Equal(t, PositionQB, pos)

	_, ok = ParsePosition("OL")
	assert.False(t, ok)
}

func TestPlayerKey(t *testing.T) {
	withID := Player{ID: "4046", Name: "Patrick Mahomes", Team: "KC", Position: PositionQB}
	assert.Equal(t, "4046", withID.Key())

	noID := Player{Name: "Patrick Mahomes", Team: "KC", Position: PositionQB}
	assert.Equal(t, "Patrick Mahomes|KC|QB", noID.Key())
}
