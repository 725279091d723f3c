package streamer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

func TestScoreLinearSum(t *testing.T) {
	weights := WeightTable{
		nfl.PositionQB: {"epa_per_play": 0.6, "implied_total": 0.1},
	}
	p := nfl.EnrichedPlayer{
		Player:  nfl.Player{Position: nfl.PositionQB},
		Metrics: map[string]float64{"epa_per_play": 0.3, "implied_total": 26.25},
	}

	// 0.3*0.6 + 26.25*0.1, nothing more.
	assert.InDelta(t, 0.18+2.625, weights.Score(p), 1e-9)
}

func TestScoreIgnoresUnweightedAndMissing(t *testing.T) {
	weights := WeightTable{
		nfl.PositionWR: {"target_share": 28, "yprr": 22},
	}
	p := nfl.EnrichedPlayer{
		Player: nfl.Player{Position: nfl.PositionWR},
		Metrics: map[string]float64{
			"target_share": 0.25,
			"mystery_stat": 99.0, // no weight: contributes nothing
			// yprr absent: contributes nothing
		},
	}
	assert.InDelta(t, 0.25*28, weights.Score(p), 1e-9)
}

func TestScoreUnknownPositionOrEmpty(t *testing.T) {
	weights := DefaultWeights()

	noMetrics := nfl.EnrichedPlayer{Player: nfl.Player{Position: nfl.PositionQB}}
	assert.Zero(t, weights.Score(noMetrics))

	unknownPos := nfl.EnrichedPlayer{
		Player:  nfl.Player{Position: nfl.Position("FB")},
		Metrics: map[string]float64{"epa_per_play": 1},
	}
	assert.Zero(t, weights.Score(unknownPos))
}

func TestScoreDeterministic(t *testing.T) {
	weights := DefaultWeights()
	p := nfl.EnrichedPlayer{
		Player: nfl.Player{Position: nfl.PositionQB},
		Metrics: map[string]float64{
			"epa_per_play":       0.21,
			"cpoe":               3.4,
			"red_zone_dropbacks": 0.8,
			"opponent_pass_dvoa": -0.12,
			"pace":               1.1,
			"implied_total":      24.5,
			"weather":            0.2,
		},
	}

	first := weights.Score(p)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, weights.Score(p))
	}
}

func TestDefaultWeightsCoverAllPositions(t *testing.T) {
	weights := DefaultWeights()
	for _, pos := range nfl.FantasyPositions {
		row, ok := weights[pos]
		require.True(t, ok, "missing weights for %s", pos)
		assert.NotEmpty(t, row)
		assert.Contains(t, row, "implied_total")
		assert.Contains(t, row, "weather")
	}
}

func TestWeightTableClone(t *testing.T) {
	original := DefaultWeights()
	clone := original.Clone()
	clone[nfl.PositionQB]["epa_per_play"] = 999

	assert.Equal(t, 25.0, original[nfl.PositionQB]["epa_per_play"])
	assert.Equal(t, 999.0, clone[nfl.PositionQB]["epa_per_play"])
}
