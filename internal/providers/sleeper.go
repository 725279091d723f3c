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

const sleeperDefaultBaseURL = "https://api.sleeper.app/v1"

// depthChartCaps bounds how many players per position survive roster
// trimming. The full Sleeper dump is ~11k rows; anything past these depths is
// never streamable.
var depthChartCaps = map[nfl.Position]int{
	nfl.PositionQB:  40,
	nfl.PositionRB:  70,
	nfl.PositionWR:  80,
	nfl.PositionTE:  40,
	nfl.PositionK:   32,
	nfl.PositionDST: 20,
}

// SleeperClient loads the league-wide player universe from Sleeper's public
// API. One big unauthenticated dump; keep the rate limit conservative.
type SleeperClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewSleeperClient creates a new Sleeper roster client.
func NewSleeperClient(timeout time.Duration, rateLimit int, logger *logrus.Logger) *SleeperClient {
	return &SleeperClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    sleeperDefaultBaseURL,
		limiter:    perMinute(rateLimit),
	}
}

type sleeperPlayer struct {
	PlayerID        string `json:"player_id"`
	FullName        string `json:"full_name"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Team            string `json:"team"`
	Position        string `json:"position"`
	Status          string `json:"status"`
	Active          bool   `json:"active"`
	DepthChartOrder *int   `json:"depth_chart_order"`
}

// Players fetches the full Sleeper player dump filtered down to active,
// rostered, fantasy-position players. Team defenses come through with the
// team code as their id.
func (c *SleeperClient) Players(ctx context.Context) ([]nfl.Player, error) {
	var dump map[string]sleeperPlayer
	url := fmt.Sprintf("%s/players/nfl", c.baseURL)
	if err := getJSON(ctx, c.httpClient, c.limiter, url, nil, &dump); err != nil {
		return nil, fmt.Errorf("sleeper players: %w", err)
	}

	players := make([]nfl.Player, 0, 1024)
	for id, sp := range dump {
		pos, ok := nfl.ParsePosition(sp.Position)
		if !ok || sp.Team == "" {
			continue
		}
		if pos != nfl.PositionDST && !sp.Active {
			continue
		}

		name := sp.FullName
		if name == "" {
			name = fmt.Sprintf("%s %s", sp.FirstName, sp.LastName)
		}
		if pos == nfl.PositionDST {
			name = fmt.Sprintf("%s D/ST", nfl.ResolveTeam(sp.Team))
		}

		player := nfl.Player{
			ID:       id,
			Name:     name,
			Team:     nfl.ResolveTeam(sp.Team),
			Position: pos,
			Status:   sp.Status,
			Headshot: fmt.Sprintf("https://sleepercdn.com/content/nfl/players/%s.jpg", id),
		}
		if sp.DepthChartOrder != nil {
			player.DepthChartOrder = *sp.DepthChartOrder
		}
		players = append(players, player)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "sleeper",
		"players":   len(players),
	}).Info("Loaded player universe")
	return TrimToRelevant(players), nil
}

// TrimToRelevant keeps only the fantasy-relevant depth of each position.
// Players with a depth chart slot sort ahead of those without; ties break on
// name so repeated runs over the same dump produce the same universe.
func TrimToRelevant(players []nfl.Player) []nfl.Player {
	byPos := make(map[nfl.Position][]nfl.Player, len(depthChartCaps))
	for _, p := range players {
		byPos[p.Position] = append(byPos[p.Position], p)
	}

	trimmed := make([]nfl.Player, 0, len(players))
	for _, pos := range nfl.FantasyPositions {
		group := byPos[pos]
		sort.SliceStable(group, func(i, j int) bool {
			di, dj := depthRank(group[i]), depthRank(group[j])
			if di != dj {
				return di < dj
			}
			return group[i].Name < group[j].Name
		})
		if cap, ok := depthChartCaps[pos]; ok && len(group) > cap {
			group = group[:cap]
		}
		trimmed = append(trimmed, group...)
	}
	return trimmed
}

func depthRank(p nfl.Player) int {
	if p.DepthChartOrder > 0 {
		return p.DepthChartOrder
	}
	return 99
}
