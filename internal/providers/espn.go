package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

const espnDefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

// ESPNClient pulls the weekly schedule and game lines from the public ESPN
// scoreboard. No API key required.
type ESPNClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	limiter    *rate.Limiter

	// When true, a failed fetch returns the static sample slate instead of an
	// error. Development only; production keeps failures visible so scoring
	// degrades to absent spreads rather than fake ones.
	sampleFallback bool
}

// NewESPNClient creates a new ESPN scoreboard client.
func NewESPNClient(timeout time.Duration, rateLimit int, sampleFallback bool, logger *logrus.Logger) *ESPNClient {
	return &ESPNClient{
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		baseURL:        espnDefaultBaseURL,
		limiter:        perMinute(rateLimit),
		sampleFallback: sampleFallback,
	}
}

// ESPN scoreboard response, trimmed to the fields we read.
type espnScoreboardResponse struct {
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Events []struct {
		ID   string `json:"id"`
		Date string `json:"date"`
		Week struct {
			Number int `json:"number"`
		} `json:"week"`
		Competitions []struct {
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Team     struct {
					DisplayName  string `json:"displayName"`
					Abbreviation string `json:"abbreviation"`
				} `json:"team"`
			} `json:"competitors"`
			Odds []struct {
				Details   string      `json:"details"`
				OverUnder interface{} `json:"overUnder"`
				Spread    interface{} `json:"spread"`
			} `json:"odds"`
			Venue struct {
				FullName string `json:"fullName"`
				Indoor   *bool  `json:"indoor"`
			} `json:"venue"`
		} `json:"competitions"`
	} `json:"events"`
}

// CurrentWeek returns ESPN's live regular-season week. ESPN lags on Tuesday
// mornings before lines roll over, so we advance by one until the flip.
func (c *ESPNClient) CurrentWeek(ctx context.Context) (int, error) {
	var resp espnScoreboardResponse
	url := fmt.Sprintf("%s/scoreboard?seasontype=2", c.baseURL)
	if err := getJSON(ctx, c.httpClient, c.limiter, url, nil, &resp); err != nil {
		return 0, fmt.Errorf("espn current week: %w", err)
	}

	week := resp.Week.Number
	if week == 0 && len(resp.Events) > 0 {
		week = resp.Events[0].Week.Number
	}
	if week == 0 {
		return 0, fmt.Errorf("espn scoreboard had no week number")
	}

	now := time.Now().UTC()
	if now.Weekday() == time.Tuesday && now.Hour() < 22 {
		c.logger.WithField("component", "espn").Debug("ESPN still on old week, auto-advancing")
		week++
	}
	return week, nil
}

// WeekGames fetches the schedule and betting lines for one week. The returned
// spread is normalized to the home team's perspective: negative means the
// home side is favored.
func (c *ESPNClient) WeekGames(ctx context.Context, week int) ([]nfl.RawGame, error) {
	var resp espnScoreboardResponse
	url := fmt.Sprintf("%s/scoreboard?seasontype=2&week=%d", c.baseURL, week)
	if err := getJSON(ctx, c.httpClient, c.limiter, url, nil, &resp); err != nil {
		if c.sampleFallback {
			c.logger.WithField("component", "espn").WithError(err).Warn("Odds feed unavailable, serving sample slate")
			return SampleGames(week), nil
		}
		return nil, fmt.Errorf("espn week %d games: %w", week, err)
	}

	games := make([]nfl.RawGame, 0, len(resp.Events))
	for _, ev := range resp.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]

		var homeName, awayName, homeAbbr string
		for _, competitor := range comp.Competitors {
			switch competitor.HomeAway {
			case "home":
				homeName = competitor.Team.DisplayName
				homeAbbr = competitor.Team.Abbreviation
			case "away":
				awayName = competitor.Team.DisplayName
			}
		}
		if homeName == "" || awayName == "" {
			continue
		}

		game := nfl.RawGame{
			Week:     week,
			HomeTeam: homeName,
			AwayTeam: awayName,
			Venue:    comp.Venue.FullName,
			Indoor:   comp.Venue.Indoor,
		}

		if kickoff, err := parseESPNDate(ev.Date); err == nil {
			game.Kickoff = kickoff
		}

		if len(comp.Odds) > 0 {
			line := comp.Odds[0]
			game.Total = asFloat(line.OverUnder)
			game.Spread = homeSpread(line.Spread, line.Details, homeAbbr)
		}

		games = append(games, game)
	}
	return games, nil
}

// homeSpread normalizes an ESPN line to the home team's perspective. ESPN's
// numeric spread is the favorite's handicap; details strings look like
// "KC -6.5" and name the favorite. When only a bare number is available we
// assume it is already home-relative.
func homeSpread(spread interface{}, details, homeAbbr string) *float64 {
	if fav, pts, ok := parseSpreadDetails(details); ok {
		if !nfl.TeamsMatch(fav, homeAbbr) {
			pts = -pts
		}
		return &pts
	}
	return asFloat(spread)
}

// parseSpreadDetails splits a "KC -6.5" style line into favorite and points.
func parseSpreadDetails(details string) (team string, points float64, ok bool) {
	fields := strings.Fields(strings.TrimSpace(details))
	if len(fields) < 2 {
		return "", 0, false
	}
	points, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return "", 0, false
	}
	return strings.Join(fields[:len(fields)-1], " "), points, true
}

// parseESPNDate handles ESPN's minute-precision RFC3339 variant.
func parseESPNDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z", s)
}

// asFloat tolerates ESPN sending numbers as either JSON numbers or strings.
func asFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

// SampleGames is the static fallback slate used when the odds feed is down
// and sample fallback is enabled. Shapes mirror a real early-window Sunday.
func SampleGames(week int) []nfl.RawGame {
	kickoff := time.Now().UTC().Truncate(time.Hour)
	f := func(v float64) *float64 { return &v }
	return []nfl.RawGame{
		{Week: week, HomeTeam: "NE", AwayTeam: "NYJ", Spread: f(-2.5), Total: f(41.5), Kickoff: kickoff},
		{Week: week, HomeTeam: "HOU", AwayTeam: "JAX", Spread: f(-1.0), Total: f(44.0), Kickoff: kickoff},
		{Week: week, HomeTeam: "CIN", AwayTeam: "CLE", Spread: f(-3.0), Total: f(40.0), Kickoff: kickoff},
	}
}
