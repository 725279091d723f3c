package streamer

import (
	"sort"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// WeightTable maps position -> metric -> weight. Scoring is a plain linear
// sum over the metrics present on a player; a metric with no weight
// contributes nothing, and a weighted metric the player lacks contributes
// nothing. There is no normalization pass.
type WeightTable map[nfl.Position]map[string]float64

// DefaultWeights is the shipped scoring model. Operators can override any
// position's row through the weights API; overridden rows replace the
// default row wholesale.
func DefaultWeights() WeightTable {
	return WeightTable{
		nfl.PositionQB: {
			"epa_per_play":       25,
			"cpoe":               12,
			"red_zone_dropbacks": 22,
			"opponent_pass_dvoa": 15,
			"pace":               8,
			"implied_total":      10,
			"weather":            8,
		},
		nfl.PositionRB: {
			"rush_share":         25,
			"target_share":       20,
			"red_zone_touches":   20,
			"opponent_rush_dvoa": 15,
			"game_script":        10,
			"implied_total":      8,
			"weather":            5,
		},
		nfl.PositionWR: {
			"target_share":       28,
			"yprr":               22,
			"air_yards_share":    20,
			"opponent_pass_dvoa": 10,
			"qb_efficiency":      10,
			"implied_total":      6,
			"weather":            4,
		},
		nfl.PositionTE: {
			"target_share":       30,
			"yprr":               20,
			"red_zone_targets":   20,
			"opponent_pass_dvoa": 10,
			"qb_efficiency":      10,
			"implied_total":      5,
			"weather":            5,
		},
		nfl.PositionK: {
			"fg_attempts":            30,
			"team_redzone_pct":       20,
			"opponent_redzone_stops": 15,
			"projected_total":        10,
			"implied_total":          15,
			"weather":                10,
		},
		nfl.PositionDST: {
			"pressure_rate":          25,
			"opponent_turnover_rate": 25,
			"sack_rate":              20,
			"implied_total":          5,
			"weather":                15,
		},
	}
}

// Clone deep-copies the table so stored overrides never alias the defaults.
func (t WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(t))
	for pos, row := range t {
		copied := make(map[string]float64, len(row))
		for metric, w := range row {
			copied[metric] = w
		}
		out[pos] = copied
	}
	return out
}

// Score computes the raw score for one enriched player. Metric keys are
// visited in sorted order so float accumulation is identical across runs over
// the same inputs.
func (t WeightTable) Score(p nfl.EnrichedPlayer) float64 {
	row, ok := t[p.Position]
	if !ok || len(p.Metrics) == 0 {
		return 0
	}

	keys := make([]string, 0, len(p.Metrics))
	for k := range p.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var score float64
	for _, k := range keys {
		if w, ok := row[k]; ok {
			score += p.Metrics[k] * w
		}
	}
	return score
}
