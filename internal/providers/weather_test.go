package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

const forecastFixture = `{
  "hourly": {
    "time": ["2025-10-05T16:00", "2025-10-05T17:00", "2025-10-05T18:00"],
    "temperature_2m": [58.0, 61.5, 63.0],
    "precipitation": [0.0, 0.15, 0.3],
    "wind_speed_10m": [8.0, 12.0, 14.0],
    "weather_code": [2, 61, 61]
  }
}`

func newTestWeatherClient(serverURL string) *OpenMeteoClient {
	c := NewOpenMeteoClient(2*time.Second, testLogger())
	c.baseURL = serverURL
	return c
}

func TestVenueReportOutdoor(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Contains(t, r.URL.RawQuery, "temperature_unit=fahrenheit")
		w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	kickoff := time.Date(2025, 10, 5, 17, 0, 0, 0, time.UTC)
	report, err := newTestWeatherClient(srv.URL).VenueReport(context.Background(), "GB", kickoff)
	require.NoError(t, err)

	assert.Equal(t, "GB", report.Team)
	assert.False(t, report.Indoor)
	assert.Equal(t, 61.5, report.TempF)
	assert.Equal(t, 12.0, report.WindMph)
	assert.Equal(t, 0.15, report.PrecipIn)
	assert.Equal(t, 61, report.ConditionCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestVenueReportDomeSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("dome venue should not hit the forecast API")
	}))
	defer srv.Close()

	report, err := newTestWeatherClient(srv.URL).VenueReport(context.Background(), "Lions", time.Now())
	require.NoError(t, err)
	assert.True(t, report.Indoor)
	assert.Equal(t, "DET", report.Team)
	assert.Equal(t, "Dome", report.Summary())
}

func TestVenueReportUnknownTeam(t *testing.T) {
	_, err := newTestWeatherClient("http://unused").VenueReport(context.Background(), "London Monarchs", time.Now())
	assert.Error(t, err)
}

func TestReportsForGames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	indoor := true
	games := []nfl.RawGame{
		{HomeTeam: "Green Bay Packers", AwayTeam: "Detroit Lions", Kickoff: time.Date(2025, 10, 5, 17, 0, 0, 0, time.UTC)},
		{HomeTeam: "Minnesota Vikings", AwayTeam: "Chicago Bears", Indoor: &indoor},
	}

	reports, err := newTestWeatherClient(srv.URL).ReportsForGames(context.Background(), games)
	require.NoError(t, err)

	// Both sides of each game share the home venue's report.
	require.Contains(t, reports, "GB")
	require.Contains(t, reports, "DET")
	assert.Equal(t, reports["GB"].TempF, reports["DET"].TempF)
	assert.Equal(t, "DET", reports["DET"].Team)

	require.Contains(t, reports, "MIN")
	require.Contains(t, reports, "CHI")
	assert.True(t, reports["MIN"].Indoor)
	assert.True(t, reports["CHI"].Indoor)
}

func TestReportsForGamesAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	games := []nfl.RawGame{{HomeTeam: "GB", AwayTeam: "DET"}}
	_, err := newTestWeatherClient(srv.URL).ReportsForGames(context.Background(), games)
	assert.Error(t, err)
}

func TestNearestHourIndex(t *testing.T) {
	hours := []string{"2025-10-05T16:00", "2025-10-05T17:00", "2025-10-05T18:00"}
	assert.Equal(t, 1, nearestHourIndex(hours, time.Date(2025, 10, 5, 17, 10, 0, 0, time.UTC)))
	assert.Equal(t, 0, nearestHourIndex(hours, time.Date(2025, 10, 5, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, nearestHourIndex(hours, time.Date(2025, 10, 6, 4, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, nearestHourIndex(nil, time.Now()))
}
