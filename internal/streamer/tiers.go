package streamer

import (
	"sort"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// TierFor maps a raw score onto the dashboard's letter bands.
func TierFor(score float64) string {
	switch {
	case score >= 90:
		return "S"
	case score >= 75:
		return "A"
	case score >= 60:
		return "B"
	case score >= 45:
		return "C"
	default:
		return "D"
	}
}

// ScoreAdjuster mutates a player's raw score after the weighted sum, before
// tiering. Used for the rest-of-season carry adjustment.
type ScoreAdjuster func(p nfl.EnrichedPlayer, score float64) float64

// Rank scores every enriched player, sorts descending by raw score, and
// assigns 1-based ranks and tiers. The sort is stable so equal scores keep
// their fused order and repeated runs agree.
func Rank(players []nfl.EnrichedPlayer, weights WeightTable, adjusters ...ScoreAdjuster) []nfl.ScoredPlayer {
	scored := make([]nfl.ScoredPlayer, 0, len(players))
	for _, p := range players {
		score := weights.Score(p)
		for _, adjust := range adjusters {
			score = adjust(p, score)
		}
		sp := nfl.ScoredPlayer{
			Player:   p.Player,
			RawScore: score,
		}
		if p.Matchup != nil {
			sp.Opponent = p.Matchup.Opponent
			sp.IsHome = p.Matchup.IsHome
			sp.Spread = p.Matchup.Spread
			sp.ImpliedPoints = p.Matchup.ImpliedPoints
		}
		if p.Weather != nil {
			sp.WeatherSummary = p.Weather.Summary()
		}
		sp.Tier = TierFor(sp.RawScore)
		scored = append(scored, sp)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RawScore > scored[j].RawScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
