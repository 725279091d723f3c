package streamer

import (
	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// Metric keys the fusion layer derives from feed data. Manual entries may
// carry these same keys and win when they do.
const (
	MetricSpread       = "spread"
	MetricTotal        = "total"
	MetricImpliedTotal = "implied_total"
	MetricWeather      = "weather"
	MetricOpponentRank = "opponent_rank"
)

// FuseInputs carries everything the fusion layer joins onto the roster.
// Any map may be nil or partial; fusion degrades per-signal, never per-run.
type FuseInputs struct {
	Matchups map[string]*nfl.Matchup
	Weather  map[string]*nfl.WeatherReport
	Rankings map[string]int
	// Manual is keyed by player key, then metric name. Manual values override
	// anything derived from feeds for the same key.
	Manual map[string]map[string]float64
}

// Fuse joins every signal source onto the roster. Precedence per metric is
// manual entry, then matchup-derived value, then nothing: a signal no source
// provided is a missing map key on the result, never a zero. Players with no
// matchup (bye week, unmatched team) still come through and score on
// whatever signals they do have.
func Fuse(players []nfl.Player, in FuseInputs) []nfl.EnrichedPlayer {
	enriched := make([]nfl.EnrichedPlayer, 0, len(players))
	for _, p := range players {
		e := nfl.EnrichedPlayer{
			Player:  p,
			Metrics: make(map[string]float64, 8),
		}
		team := nfl.ResolveTeam(p.Team)

		if m, ok := in.Matchups[team]; ok {
			e.Matchup = m
			if m.Spread != nil {
				e.Metrics[MetricSpread] = *m.Spread
			}
			if m.Total != nil {
				e.Metrics[MetricTotal] = *m.Total
			}
			if m.ImpliedPoints != nil {
				e.Metrics[MetricImpliedTotal] = *m.ImpliedPoints
			}
			if rank, ok := in.Rankings[m.Opponent]; ok {
				r := rank
				e.OpponentRank = &r
				e.Metrics[MetricOpponentRank] = float64(rank)
			}
		}

		if w, ok := in.Weather[team]; ok {
			e.Weather = w
			e.Metrics[MetricWeather] = WeatherScore(w)
		} else if e.Matchup != nil && e.Matchup.Indoor {
			e.Metrics[MetricWeather] = WeatherScore(&nfl.WeatherReport{Indoor: true})
		}

		for metric, value := range in.Manual[p.Key()] {
			e.Metrics[metric] = value
		}

		enriched = append(enriched, e)
	}
	return enriched
}

// WeatherScore collapses a forecast into one signed signal. Indoors is a
// small bonus; meaningful precipitation is a penalty; everything else is
// neutral.
func WeatherScore(w *nfl.WeatherReport) float64 {
	if w == nil {
		return 0
	}
	if w.Indoor {
		return 0.2
	}
	switch {
	case w.PrecipIn > 1.0:
		return -0.3
	case w.PrecipIn > 0.1:
		return -0.1
	}
	return 0
}
