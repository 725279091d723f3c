package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

const sportsDataIODefaultBaseURL = "https://api.sportsdata.io/v3/nfl/scores/json"

// SportsDataIOClient derives power rankings from the SportsDataIO standings
// feed. Rankings are a context signal only; when the key is missing or the
// feed is down the engine falls back to a static preseason list.
type SportsDataIOClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	limiter    *rate.Limiter
	apiKey     string
}

// NewSportsDataIOClient creates a standings-backed rankings client.
func NewSportsDataIOClient(apiKey string, timeout time.Duration, rateLimit int, logger *logrus.Logger) *SportsDataIOClient {
	return &SportsDataIOClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    sportsDataIODefaultBaseURL,
		limiter:    perMinute(rateLimit),
		apiKey:     apiKey,
	}
}

type sportsDataIOStanding struct {
	Team       string  `json:"Team"`
	Name       string  `json:"Name"`
	Wins       int     `json:"Wins"`
	Losses     int     `json:"Losses"`
	Ties       int     `json:"Ties"`
	Percentage float64 `json:"Percentage"`
}

// Rankings returns all teams ordered best to worst for the given season.
// Ordering is wins, then win percentage, then abbreviation for stability.
func (c *SportsDataIOClient) Rankings(ctx context.Context, season int) ([]nfl.TeamRanking, error) {
	if c.apiKey == "" {
		c.logger.WithField("component", "sportsdataio").Debug("No API key configured, using static rankings")
		return StaticRankings(), nil
	}

	var standings []sportsDataIOStanding
	url := fmt.Sprintf("%s/Standings/%d", c.baseURL, season)
	headers := map[string]string{"Ocp-Apim-Subscription-Key": c.apiKey}
	if err := getJSON(ctx, c.httpClient, c.limiter, url, headers, &standings); err != nil {
		return nil, fmt.Errorf("sportsdataio standings %d: %w", season, err)
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("sportsdataio standings %d: empty response", season)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		if standings[i].Percentage != standings[j].Percentage {
			return standings[i].Percentage > standings[j].Percentage
		}
		return standings[i].Team < standings[j].Team
	})

	rankings := make([]nfl.TeamRanking, 0, len(standings))
	for i, s := range standings {
		rankings = append(rankings, nfl.TeamRanking{
			Team:   nfl.ResolveTeam(s.Team),
			Rank:   i + 1,
			Record: fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties),
		})
	}
	return rankings, nil
}

// StaticRankings is the no-key / feed-down fallback: a short preseason-style
// list. Teams absent from it simply score without the rank signal.
func StaticRankings() []nfl.TeamRanking {
	return []nfl.TeamRanking{
		{Team: "KC", Rank: 1},
		{Team: "SF", Rank: 2},
		{Team: "BUF", Rank: 3},
		{Team: "PHI", Rank: 4},
		{Team: "BAL", Rank: 5},
	}
}
