package streamer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// Feed doubles. Each can be primed with data or an error.
type stubOdds struct {
	games []nfl.RawGame
	err   error
	delay time.Duration
}

func (s *stubOdds) WeekGames(ctx context.Context, week int) ([]nfl.RawGame, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.games, s.err
}

type stubWeather struct {
	reports map[string]*nfl.WeatherReport
	err     error
}

func (s *stubWeather) ReportsForGames(ctx context.Context, games []nfl.RawGame) (map[string]*nfl.WeatherReport, error) {
	return s.reports, s.err
}

type stubRankings struct {
	rankings []nfl.TeamRanking
	err      error
}

func (s *stubRankings) Rankings(ctx context.Context, season int) ([]nfl.TeamRanking, error) {
	return s.rankings, s.err
}

type stubRoster struct {
	players []nfl.Player
	err     error
}

func (s *stubRoster) Players(ctx context.Context) ([]nfl.Player, error) {
	return s.players, s.err
}

type stubManual struct {
	stats map[string]map[string]float64
	err   error
}

func (s *stubManual) ManualStats(ctx context.Context, week int, mode string) (map[string]map[string]float64, error) {
	return s.stats, s.err
}

type stubWeights struct {
	table WeightTable
	err   error
}

func (s *stubWeights) Weights(ctx context.Context) (WeightTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.table == nil {
		return DefaultWeights(), nil
	}
	return s.table, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestEngine(odds *stubOdds, weather *stubWeather, rankings *stubRankings, roster *stubRoster, manual *stubManual, weights *stubWeights, opts ...EngineOption) *Engine {
	return NewEngine(odds, weather, rankings, roster, manual, weights, quietLogger(), opts...)
}

func healthyFixtures() (*stubOdds, *stubWeather, *stubRankings, *stubRoster, *stubManual, *stubWeights) {
	odds := &stubOdds{games: []nfl.RawGame{
		{Week: 5, HomeTeam: "KC", AwayTeam: "LV", Spread: fp(-6.5), Total: fp(46.0)},
	}}
	weather := &stubWeather{reports: map[string]*nfl.WeatherReport{
		"KC": {Team: "KC", PrecipIn: 0.0},
		"LV": {Team: "LV", Indoor: true},
	}}
	rankings := &stubRankings{rankings: []nfl.TeamRanking{{Team: "KC", Rank: 1}, {Team: "LV", Rank: 28}}}
	roster := &stubRoster{players: []nfl.Player{
		{ID: "qb1", Name: "Home QB", Team: "KC", Position: nfl.PositionQB},
		{ID: "qb2", Name: "Away QB", Team: "LV", Position: nfl.PositionQB},
	}}
	manual := &stubManual{stats: map[string]map[string]float64{
		"qb1": {"epa_per_play": 0.3},
	}}
	return odds, weather, rankings, roster, manual, &stubWeights{}
}

func TestEngineRunHealthy(t *testing.T) {
	engine := newTestEngine(healthyFixtures())

	snap, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 5, snap.Week)
	assert.Equal(t, nfl.ModeWeekly, snap.Mode)
	assert.False(t, snap.Degraded)
	assert.False(t, snap.FetchedAt.IsZero())
	require.Len(t, snap.Players, 2)

	byID := map[string]nfl.ScoredPlayer{}
	for _, p := range snap.Players {
		byID[p.ID] = p
	}

	// Home QB: favored side of a 46-point game plus a manual EPA entry.
	qb1 := byID["qb1"]
	assert.Equal(t, "LV", qb1.Opponent)
	assert.True(t, qb1.IsHome)
	require.NotNil(t, qb1.ImpliedPoints)
	assert.InDelta(t, 26.25, *qb1.ImpliedPoints, 1e-9)

	// epa 0.3*25 + implied 26.25*10 + weather 0*8 = 270.
	assert.InDelta(t, 0.3*25+26.25*10, qb1.RawScore, 1e-9)
	assert.Equal(t, 1, qb1.Rank)

	// Away QB: dog side, dome bonus, no manual entries.
	qb2 := byID["qb2"]
	require.NotNil(t, qb2.ImpliedPoints)
	assert.InDelta(t, 19.75, *qb2.ImpliedPoints, 1e-9)
	assert.InDelta(t, 19.75*10+0.2*8, qb2.RawScore, 1e-9)
	assert.Equal(t, 2, qb2.Rank)
}

func TestEngineRunDeterministic(t *testing.T) {
	engine := newTestEngine(healthyFixtures())

	first, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
		require.NoError(t, err)
		require.Len(t, again.Players, len(first.Players))
		for j := range first.Players {
			assert.Equal(t, first.Players[j].ID, again.Players[j].ID)
			assert.Equal(t, first.Players[j].RawScore, again.Players[j].RawScore)
			assert.Equal(t, first.Players[j].Rank, again.Players[j].Rank)
		}
	}
}

func TestEngineRunOddsDown(t *testing.T) {
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	odds.err = errors.New("odds feed down")
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights)

	snap, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	assert.True(t, snap.Degraded)
	require.Len(t, snap.Players, 2)

	// No slate means no spreads or implied totals anywhere, but manual
	// entries still score.
	for _, p := range snap.Players {
		assert.Nil(t, p.Spread)
		assert.Nil(t, p.ImpliedPoints)
	}
	byID := map[string]nfl.ScoredPlayer{}
	for _, p := range snap.Players {
		byID[p.ID] = p
	}
	assert.InDelta(t, 0.3*25, byID["qb1"].RawScore, 1e-9)
	assert.Zero(t, byID["qb2"].RawScore)
}

func TestEngineRunRosterDownIsTotalFailure(t *testing.T) {
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	roster.err = errors.New("sleeper down")
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights)

	_, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTotalFailure)
}

func TestEngineRunEmptyRosterIsValid(t *testing.T) {
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	roster.players = nil
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights)

	snap, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	assert.Empty(t, snap.Players)
	assert.False(t, snap.Degraded)
}

func TestEngineRunSlowFeedTimesOut(t *testing.T) {
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	odds.delay = 500 * time.Millisecond
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights,
		WithAdapterTimeout(20*time.Millisecond))

	start := time.Now()
	snap, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	assert.True(t, snap.Degraded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestEngineRunWeightStoreDownFallsBack(t *testing.T) {
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	weights.err = errors.New("db down")
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights)

	snap, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	assert.True(t, snap.Degraded)
	assert.NotZero(t, snap.Players[0].RawScore)
}

func TestEngineRunROSMode(t *testing.T) {
	engine := newTestEngine(healthyFixtures())

	weekly, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)
	ros, err := engine.Run(context.Background(), 5, nfl.ModeROS)
	require.NoError(t, err)
	assert.Equal(t, nfl.ModeROS, ros.Mode)

	weeklyByID := map[string]float64{}
	for _, p := range weekly.Players {
		weeklyByID[p.ID] = p.RawScore
	}
	for _, p := range ros.Players {
		require.NotNil(t, p.ImpliedPoints)
		assert.InDelta(t, weeklyByID[p.ID]+*p.ImpliedPoints*0.15, p.RawScore, 1e-9)
	}
}

func TestEngineRunUnknownModeDefaultsWeekly(t *testing.T) {
	engine := newTestEngine(healthyFixtures())
	snap, err := engine.Run(context.Background(), 5, "season-long")
	require.NoError(t, err)
	assert.Equal(t, nfl.ModeWeekly, snap.Mode)
}

// breakerSpy records which services the engine routed through the breaker.
type breakerSpy struct {
	services map[string]int
}

func (b *breakerSpy) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	if b.services == nil {
		b.services = map[string]int{}
	}
	b.services[service]++
	return fn()
}

func TestEngineRoutesFeedsThroughBreaker(t *testing.T) {
	spy := &breakerSpy{}
	odds, weather, rankings, roster, manual, weights := healthyFixtures()
	engine := newTestEngine(odds, weather, rankings, roster, manual, weights,
		WithCircuitExecutor(spy))

	_, err := engine.Run(context.Background(), 5, nfl.ModeWeekly)
	require.NoError(t, err)

	for _, svc := range []string{"odds", "rankings", "roster", "manual", "weather"} {
		assert.Equal(t, 1, spy.services[svc], "service %s", svc)
	}
}
