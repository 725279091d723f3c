package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

const sleeperFixture = `{
  "4046": {"player_id": "4046", "full_name": "Patrick Mahomes", "team": "KC", "position": "QB", "status": "Active", "active": true, "depth_chart_order": 1},
  "7564": {"player_id": "7564", "full_name": "Backup Guy", "team": "KC", "position": "QB", "status": "Active", "active": true, "depth_chart_order": 3},
  "1111": {"player_id": "1111", "full_name": "Retired Vet", "team": "DAL", "position": "RB", "status": "Inactive", "active": false},
  "2222": {"player_id": "2222", "full_name": "Free Agent", "team": "", "position": "WR", "status": "Active", "active": true},
  "3333": {"player_id": "3333", "first_name": "No", "last_name": "FullName", "team": "WAS", "position": "TE", "status": "Active", "active": true},
  "4444": {"player_id": "4444", "full_name": "Lineman", "team": "KC", "position": "OL", "status": "Active", "active": true},
  "DET": {"player_id": "DET", "team": "DET", "position": "DEF", "active": false}
}`

func TestSleeperPlayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players/nfl", r.URL.Path)
		w.Write([]byte(sleeperFixture))
	}))
	defer srv.Close()

	c := NewSleeperClient(2*time.Second, 60, testLogger())
	c.baseURL = srv.URL

	players, err := c.Players(context.Background())
	require.NoError(t, err)

	byID := make(map[string]nfl.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	// Active skill players survive; inactive, teamless, and non-fantasy
	// positions are filtered.
	require.Contains(t, byID, "4046")
	assert.NotContains(t, byID, "1111")
	assert.NotContains(t, byID, "2222")
	assert.NotContains(t, byID, "4444")

	mahomes := byID["4046"]
	assert.Equal(t, "KC", mahomes.Team)
	assert.Equal(t, nfl.PositionQB, mahomes.Position)
	assert.Equal(t, 1, mahomes.DepthChartOrder)
	assert.Equal(t, "https://sleepercdn.com/content/nfl/players/4046.jpg", mahomes.Headshot)

	// Name assembled from parts, Sleeper team code normalized.
	te := byID["3333"]
	assert.Equal(t, "No FullName", te.Name)
	assert.Equal(t, "WSH", te.Team)

	// Defenses pass the active filter and get a synthetic name.
	dst := byID["DET"]
	assert.Equal(t, nfl.PositionDST, dst.Position)
	assert.Equal(t, "DET D/ST", dst.Name)
}

func TestTrimToRelevant(t *testing.T) {
	var players []nfl.Player
	for i := 0; i < 60; i++ {
		players = append(players, nfl.Player{
			ID:              fmt.Sprintf("qb-%02d", i),
			Name:            fmt.Sprintf("QB %02d", i),
			Team:            "KC",
			Position:        nfl.PositionQB,
			DepthChartOrder: i%4 + 1,
		})
	}
	players = append(players, nfl.Player{ID: "k-1", Name: "Kicker", Team: "KC", Position: nfl.PositionK})

	trimmed := TrimToRelevant(players)

	var qbs, ks int
	for _, p := range trimmed {
		switch p.Position {
		case nfl.PositionQB:
			qbs++
		case nfl.PositionK:
			ks++
		}
	}
	assert.Equal(t, 40, qbs)
	assert.Equal(t, 1, ks)

	// Starters outrank the bench regardless of input order.
	assert.Equal(t, 1, trimmed[0].DepthChartOrder)
}

func TestTrimToRelevantDeterministic(t *testing.T) {
	players := []nfl.Player{
		{ID: "b", Name: "Bravo", Team: "KC", Position: nfl.PositionWR},
		{ID: "a", Name: "Alpha", Team: "KC", Position: nfl.PositionWR},
		{ID: "c", Name: "Charlie", Team: "KC", Position: nfl.PositionWR, DepthChartOrder: 1},
	}

	first := TrimToRelevant(players)
	second := TrimToRelevant(players)
	assert.Equal(t, first, second)
	assert.Equal(t, "c", first[0].ID)
	assert.Equal(t, "a", first[1].ID)
}
