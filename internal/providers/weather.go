package providers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

const openMeteoDefaultBaseURL = "https://api.open-meteo.com/v1"

// maxConcurrentWeatherFetches bounds the per-venue forecast fan-out.
const maxConcurrentWeatherFetches = 5

// OpenMeteoClient fetches game-time forecasts from the free Open-Meteo API.
// Indoor venues never hit the network; they get a synthetic dome report.
type OpenMeteoClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewOpenMeteoClient creates a new Open-Meteo forecast client.
func NewOpenMeteoClient(timeout time.Duration, logger *logrus.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    openMeteoDefaultBaseURL,
		limiter:    perMinute(120),
	}
}

type openMeteoResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
		WeatherCode   []int     `json:"weather_code"`
	} `json:"hourly"`
}

// VenueReport returns the forecast for one home venue around kickoff.
func (c *OpenMeteoClient) VenueReport(ctx context.Context, homeTeam string, kickoff time.Time) (*nfl.WeatherReport, error) {
	team := nfl.ResolveTeam(homeTeam)
	stadium, ok := nfl.StadiumFor(team)
	if !ok {
		return nil, fmt.Errorf("no venue on file for %s", homeTeam)
	}
	if stadium.Indoor || nfl.IsDomeTeam(team) {
		return &nfl.WeatherReport{Team: team, Indoor: true, AsOf: time.Now().UTC()}, nil
	}

	if kickoff.IsZero() {
		kickoff = time.Now().UTC()
	}
	day := kickoff.UTC().Format("2006-01-02")
	url := fmt.Sprintf(
		"%s/forecast?latitude=%.4f&longitude=%.4f&hourly=temperature_2m,precipitation,wind_speed_10m,weather_code&temperature_unit=fahrenheit&wind_speed_unit=mph&precipitation_unit=inch&start_date=%s&end_date=%s",
		c.baseURL, stadium.Lat, stadium.Lon, day, day,
	)

	var resp openMeteoResponse
	if err := getJSON(ctx, c.httpClient, c.limiter, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("open-meteo forecast for %s: %w", team, err)
	}

	idx := nearestHourIndex(resp.Hourly.Time, kickoff)
	if idx < 0 || idx >= len(resp.Hourly.Temperature) {
		return nil, fmt.Errorf("open-meteo returned no usable hours for %s", team)
	}

	report := &nfl.WeatherReport{
		Team:   team,
		TempF:  resp.Hourly.Temperature[idx],
		Indoor: false,
		AsOf:   time.Now().UTC(),
	}
	if idx < len(resp.Hourly.WindSpeed) {
		report.WindMph = resp.Hourly.WindSpeed[idx]
	}
	if idx < len(resp.Hourly.Precipitation) {
		report.PrecipIn = resp.Hourly.Precipitation[idx]
	}
	if idx < len(resp.Hourly.WeatherCode) {
		report.ConditionCode = resp.Hourly.WeatherCode[idx]
	}
	return report, nil
}

// ReportsForGames fetches forecasts for every game's venue concurrently and
// keys the result by canonical team abbreviation for both sides of each game.
// Individual venue failures are logged and skipped; weather is an optional
// signal and a partial map is still useful.
func (c *OpenMeteoClient) ReportsForGames(ctx context.Context, games []nfl.RawGame) (map[string]*nfl.WeatherReport, error) {
	reports := make(map[string]*nfl.WeatherReport, len(games)*2)

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentWeatherFetches)

	for _, game := range games {
		wg.Add(1)
		go func(g nfl.RawGame) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var report *nfl.WeatherReport
			if g.Indoor != nil && *g.Indoor {
				report = &nfl.WeatherReport{Team: nfl.ResolveTeam(g.HomeTeam), Indoor: true, AsOf: time.Now().UTC()}
			} else {
				var err error
				report, err = c.VenueReport(ctx, g.HomeTeam, g.Kickoff)
				if err != nil {
					c.logger.WithFields(logrus.Fields{
						"component": "open-meteo",
						"home":      g.HomeTeam,
					}).WithError(err).Warn("Skipping weather for venue")
					return
				}
			}

			mu.Lock()
			reports[nfl.ResolveTeam(g.HomeTeam)] = report
			awayCopy := *report
			awayCopy.Team = nfl.ResolveTeam(g.AwayTeam)
			reports[awayCopy.Team] = &awayCopy
			mu.Unlock()
		}(game)
	}
	wg.Wait()

	if len(reports) == 0 && len(games) > 0 {
		return nil, fmt.Errorf("weather feed returned no reports for %d games", len(games))
	}
	return reports, nil
}

// nearestHourIndex finds the hourly slot closest to kickoff. Open-Meteo hour
// strings carry no zone and are requested in UTC.
func nearestHourIndex(hours []string, kickoff time.Time) int {
	best, bestDiff := -1, time.Duration(1<<62)
	for i, h := range hours {
		t, err := time.Parse("2006-01-02T15:04", h)
		if err != nil {
			continue
		}
		diff := t.Sub(kickoff.UTC())
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}
