package streamer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// ErrTotalFailure means a scoring run produced nothing usable: the roster
// feed failed and no players could be scored. Partial feed failures never
// raise it; they degrade the snapshot instead.
var ErrTotalFailure = errors.New("scoring run failed: no roster available")

// Adapter interfaces. The engine only sees these; concrete clients live in
// the providers package and test doubles live next to the tests.
type (
	// OddsSource provides the week's schedule and betting lines.
	OddsSource interface {
		WeekGames(ctx context.Context, week int) ([]nfl.RawGame, error)
	}

	// WeatherSource provides game-time forecasts keyed by team.
	WeatherSource interface {
		ReportsForGames(ctx context.Context, games []nfl.RawGame) (map[string]*nfl.WeatherReport, error)
	}

	// RankingSource provides team power rankings for the season.
	RankingSource interface {
		Rankings(ctx context.Context, season int) ([]nfl.TeamRanking, error)
	}

	// RosterSource provides the player universe to score over.
	RosterSource interface {
		Players(ctx context.Context) ([]nfl.Player, error)
	}

	// ManualStatSource provides operator-entered per-player metrics for one
	// week and mode, keyed player key -> metric -> value.
	ManualStatSource interface {
		ManualStats(ctx context.Context, week int, mode string) (map[string]map[string]float64, error)
	}

	// WeightSource provides the active weight table, defaults merged with any
	// stored overrides.
	WeightSource interface {
		Weights(ctx context.Context) (WeightTable, error)
	}
)

// CircuitExecutor wraps an adapter call in a named circuit breaker.
type CircuitExecutor interface {
	Execute(service string, fn func() (interface{}, error)) (interface{}, error)
}

// passthroughExecutor is used when no breaker service is wired (tests).
type passthroughExecutor struct{}

func (passthroughExecutor) Execute(_ string, fn func() (interface{}, error)) (interface{}, error) {
	return fn()
}

// Engine runs one full scoring pass: parallel feed fan-out, fusion, weighted
// scoring, tiering. Stateless between runs; snapshot caching lives above it.
type Engine struct {
	odds     OddsSource
	weather  WeatherSource
	rankings RankingSource
	roster   RosterSource
	manual   ManualStatSource
	weights  WeightSource
	breaker  CircuitExecutor
	logger   *logrus.Logger

	// adapterTimeout bounds each feed call independently so one slow feed
	// cannot stall the whole run.
	adapterTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCircuitExecutor routes adapter calls through named circuit breakers.
func WithCircuitExecutor(ce CircuitExecutor) EngineOption {
	return func(e *Engine) { e.breaker = ce }
}

// WithAdapterTimeout overrides the default per-adapter timeout.
func WithAdapterTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.adapterTimeout = d }
}

// NewEngine wires a scoring engine from its feed adapters.
func NewEngine(
	odds OddsSource,
	weather WeatherSource,
	rankings RankingSource,
	roster RosterSource,
	manual ManualStatSource,
	weights WeightSource,
	logger *logrus.Logger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		odds:           odds,
		weather:        weather,
		rankings:       rankings,
		roster:         roster,
		manual:         manual,
		weights:        weights,
		breaker:        passthroughExecutor{},
		logger:         logger,
		adapterTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// feedResult is one adapter's outcome in the fan-out.
type feedResult struct {
	source string
	data   interface{}
	err    error
}

// Run executes one scoring pass for the given week and mode and returns a
// fresh snapshot. Feed failures degrade the snapshot; only a failed roster
// feed with nothing to score raises ErrTotalFailure.
func (e *Engine) Run(ctx context.Context, week int, mode string) (*nfl.Snapshot, error) {
	mode = nfl.ParseMode(mode)
	log := e.logger.WithFields(logrus.Fields{
		"component": "engine",
		"week":      week,
		"mode":      mode,
	})
	start := time.Now()

	results := e.fetchAll(ctx, week, mode)

	var (
		games        []nfl.RawGame
		weather      map[string]*nfl.WeatherReport
		rankings     []nfl.TeamRanking
		players      []nfl.Player
		manual       map[string]map[string]float64
		degraded     bool
		rosterFailed bool
	)
	for _, r := range results {
		if r.err != nil {
			log.WithField("feed", r.source).WithError(r.err).Warn("Feed failed, continuing degraded")
			degraded = true
			if r.source == "roster" {
				rosterFailed = true
			}
			continue
		}
		switch r.source {
		case "odds":
			games = r.data.([]nfl.RawGame)
		case "weather":
			weather = r.data.(map[string]*nfl.WeatherReport)
		case "rankings":
			rankings = r.data.([]nfl.TeamRanking)
		case "roster":
			players = r.data.([]nfl.Player)
		case "manual":
			manual = r.data.(map[string]map[string]float64)
		}
	}

	if rosterFailed && len(players) == 0 {
		return nil, ErrTotalFailure
	}

	rankMap := make(map[string]int, len(rankings))
	for _, r := range rankings {
		rankMap[nfl.ResolveTeam(r.Team)] = r.Rank
	}

	enriched := Fuse(players, FuseInputs{
		Matchups: BuildMatchups(games),
		Weather:  weather,
		Rankings: rankMap,
		Manual:   manual,
	})

	weights, err := e.weights.Weights(ctx)
	if err != nil {
		log.WithError(err).Warn("Weight store unavailable, scoring with defaults")
		weights = DefaultWeights()
		degraded = true
	}

	var adjusters []ScoreAdjuster
	if mode == nfl.ModeROS {
		adjusters = append(adjusters, ROSCarryAdjuster)
	}
	scored := Rank(enriched, weights, adjusters...)

	snapshot := &nfl.Snapshot{
		ID:        uuid.New().String(),
		Week:      week,
		Mode:      mode,
		FetchedAt: time.Now().UTC(),
		Degraded:  degraded,
		Players:   scored,
	}

	log.WithFields(logrus.Fields{
		"players":  len(scored),
		"games":    len(games),
		"degraded": degraded,
		"took":     time.Since(start).String(),
	}).Info("Scoring run complete")
	return snapshot, nil
}

// fetchAll fans out to every adapter concurrently, each under its own
// timeout and circuit breaker, and collects the typed results.
func (e *Engine) fetchAll(ctx context.Context, week int, mode string) []feedResult {
	type fetch struct {
		source string
		fn     func(ctx context.Context) (interface{}, error)
	}
	fetches := []fetch{
		{"odds", func(ctx context.Context) (interface{}, error) {
			return e.odds.WeekGames(ctx, week)
		}},
		{"rankings", func(ctx context.Context) (interface{}, error) {
			return e.rankings.Rankings(ctx, seasonFor(time.Now().UTC()))
		}},
		{"roster", func(ctx context.Context) (interface{}, error) {
			return e.roster.Players(ctx)
		}},
		{"manual", func(ctx context.Context) (interface{}, error) {
			return e.manual.ManualStats(ctx, week, mode)
		}},
	}

	resultCh := make(chan feedResult, len(fetches)+1)
	var wg sync.WaitGroup
	for _, f := range fetches {
		wg.Add(1)
		go func(f fetch) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
			defer cancel()
			data, err := e.breaker.Execute(f.source, func() (interface{}, error) {
				return f.fn(fctx)
			})
			resultCh <- feedResult{source: f.source, data: data, err: err}
		}(f)
	}
	wg.Wait()
	close(resultCh)

	results := make([]feedResult, 0, len(fetches)+1)
	var games []nfl.RawGame
	for r := range resultCh {
		if r.source == "odds" && r.err == nil {
			games = r.data.([]nfl.RawGame)
		}
		results = append(results, r)
	}

	// Weather depends on the slate, so it runs after odds rather than in the
	// first wave.
	if len(games) > 0 {
		wctx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
		defer cancel()
		data, err := e.breaker.Execute("weather", func() (interface{}, error) {
			return e.weather.ReportsForGames(wctx, games)
		})
		results = append(results, feedResult{source: "weather", data: data, err: err})
	}
	return results
}

// ROSCarryAdjuster folds matchup strength forward for the rest-of-season
// view: a slice of this week's implied total carries onto the base score.
func ROSCarryAdjuster(p nfl.EnrichedPlayer, score float64) float64 {
	if p.Matchup != nil && p.Matchup.ImpliedPoints != nil {
		score += *p.Matchup.ImpliedPoints * 0.15
	}
	return score
}

// seasonFor maps a date to its NFL season year; January playoffs belong to
// the previous calendar year's season.
func seasonFor(t time.Time) int {
	if t.Month() < time.March {
		return t.Year() - 1
	}
	return t.Year()
}
