package nfl

import (
	"fmt"
	"time"
)

// Position is a fantasy-relevant roster position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDST Position = "DST"
)

// FantasyPositions lists every position the engine scores over.
var FantasyPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDST}

// ParsePosition normalizes upstream position strings. Sleeper and ESPN report
// team defenses as "DEF"; we keep a single canonical "DST".
func ParsePosition(s string) (Position, bool) {
	switch s {
	case "QB", "RB", "WR", "TE", "K":
		return Position(s), true
	case "DST", "DEF", "D/ST":
		return PositionDST, true
	}
	return "", false
}

// Player is one entry of the roster universe the engine scores over.
// Immutable within a scoring run.
type Player struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Team            string   `json:"team"`
	Position        Position `json:"position"`
	Status          string   `json:"status,omitempty"`
	DepthChartOrder int      `json:"depth_chart_order,omitempty"`
	Headshot        string   `json:"headshot,omitempty"`
}

// Key returns the stable identity for joins against manual stat entries.
// Falls back to (name, team, position) when the feed had no stable id.
func (p Player) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("%s|%s|%s", p.Name, p.Team, p.Position)
}

// RawGame is one schedule+odds row as the odds feed reports it.
// Spread is from the home team's perspective, negative when the home side is
// favored. Spread and Total stay nil when the book had no line.
type RawGame struct {
	Week     int       `json:"week"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Spread   *float64  `json:"spread,omitempty"`
	Total    *float64  `json:"total,omitempty"`
	Kickoff  time.Time `json:"kickoff"`
	Venue    string    `json:"venue,omitempty"`
	Indoor   *bool     `json:"indoor,omitempty"`
}

// Matchup is one team's view of its game for a week. Derived from
// schedule+odds on every run, never a source of truth.
type Matchup struct {
	Week          int       `json:"week"`
	Team          string    `json:"team"`
	Opponent      string    `json:"opponent"`
	IsHome        bool      `json:"is_home"`
	Spread        *float64  `json:"spread,omitempty"`
	Total         *float64  `json:"total,omitempty"`
	ImpliedPoints *float64  `json:"implied_points,omitempty"`
	Kickoff       time.Time `json:"kickoff"`
	Venue         string    `json:"venue,omitempty"`
	Indoor        bool      `json:"indoor"`
}

// WeatherReport is the normalized weather feed output for one team's venue.
type WeatherReport struct {
	Team          string    `json:"team"`
	TempF         float64   `json:"temp_f"`
	WindMph       float64   `json:"wind_mph"`
	PrecipIn      float64   `json:"precip_in"`
	ConditionCode int       `json:"condition_code"`
	Indoor        bool      `json:"indoor"`
	AsOf          time.Time `json:"as_of"`
}

// Summary renders the report the way the streamers dashboard shows it.
func (w WeatherReport) Summary() string {
	if w.Indoor {
		return "Dome"
	}
	return fmt.Sprintf("%.0f°F, wind %.0f mph, precip %.2f in", w.TempF, w.WindMph, w.PrecipIn)
}

// TeamRanking is one row of the power-rankings feed. Context signal only;
// scoring proceeds without it.
type TeamRanking struct {
	Team   string `json:"team"`
	Rank   int    `json:"rank"`
	Record string `json:"record,omitempty"`
}

// EnrichedPlayer is the fully-fused record the weight engine scores.
// Metrics only contains signals that were actually present for this player;
// a missing signal is a missing key, never a zero.
type EnrichedPlayer struct {
	Player
	Matchup      *Matchup           `json:"matchup,omitempty"`
	Weather      *WeatherReport     `json:"weather,omitempty"`
	OpponentRank *int               `json:"opponent_rank,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// ScoredPlayer is the per-player output of one scoring run.
type ScoredPlayer struct {
	Player
	Opponent       string   `json:"opponent,omitempty"`
	IsHome         bool     `json:"is_home"`
	Spread         *float64 `json:"spread,omitempty"`
	ImpliedPoints  *float64 `json:"implied_points,omitempty"`
	WeatherSummary string   `json:"weather,omitempty"`
	RawScore       float64  `json:"raw_score"`
	Tier           string   `json:"tier"`
	Rank           int      `json:"rank"`
}

// Snapshot is the cached, fully-scored player list for one scoring week.
// Replaced wholesale on refresh, never merged field-by-field.
type Snapshot struct {
	ID        string         `json:"id"`
	Week      int            `json:"week"`
	Mode      string         `json:"mode"`
	FetchedAt time.Time      `json:"fetched_at"`
	Degraded  bool           `json:"degraded,omitempty"`
	Players   []ScoredPlayer `json:"players"`
}

// Scoring modes. Weekly is the streamer view; ROS folds in rest-of-season
// manual entries and the implied-total carry adjustment.
const (
	ModeWeekly = "weekly"
	ModeROS    = "ros"
)

// ParseMode defaults anything unrecognized to the weekly view.
func ParseMode(s string) string {
	if s == ModeROS {
		return ModeROS
	}
	return ModeWeekly
}
