package prayertimes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, cityURL, coordsURL string) *Client {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)

	c := New("Cairo", "Egypt", 3, 30.0444, 31.2357, loc)
	c.cityURL = cityURL
	c.coordsURL = coordsURL
	c.attempts = 1
	c.backoff = 0
	return c
}

func apiBody(echoDate, fajr, asr string) string {
	return fmt.Sprintf(`{
		"code": 200,
		"data": {
			"timings": {
				"Fajr": %q,
				"Dhuhr": "12:54",
				"Asr": %q,
				"Maghrib": "18:55",
				"Isha": "20:14"
			},
			"date": {"gregorian": {"date": %q}}
		}
	}`, fajr, asr, echoDate)
}

func TestGetScheduleFromCityEndpoint(t *testing.T) {
	var gotQuery map[string]string
	city := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"city":    r.URL.Query().Get("city"),
			"country": r.URL.Query().Get("country"),
			"method":  r.URL.Query().Get("method"),
			"date":    r.URL.Query().Get("date"),
		}
		fmt.Fprint(w, apiBody("24-08-2026", "04:14 (EET)", "15:31"))
	}))
	defer city.Close()

	c := testClient(t, city.URL, "http://unused.invalid")
	date := time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)

	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)
	require.NotNil(t, schedule)

	assert.Equal(t, "Cairo", gotQuery["city"])
	assert.Equal(t, "Egypt", gotQuery["country"])
	assert.Equal(t, "3", gotQuery["method"])
	assert.Equal(t, "24-08-2026", gotQuery["date"])

	assert.False(t, schedule.Fallback)
	// Timezone suffix stripped, time resolved on the requested date.
	assert.Equal(t, 4, schedule.Fajr.Hour())
	assert.Equal(t, 14, schedule.Fajr.Minute())
	assert.Equal(t, 15, schedule.Asr.Hour())
	assert.Equal(t, 31, schedule.Asr.Minute())
	assert.Equal(t, 24, schedule.Fajr.Day())
}

func TestGetScheduleFallsBackToCoordinates(t *testing.T) {
	city := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer city.Close()

	var coordsHit bool
	coords := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		coordsHit = true
		assert.Equal(t, "30.0444", r.URL.Query().Get("latitude"))
		assert.Equal(t, "31.2357", r.URL.Query().Get("longitude"))
		fmt.Fprint(w, apiBody("24-08-2026", "04:14", "15:31"))
	}))
	defer coords.Close()

	c := testClient(t, city.URL, coords.URL)
	date := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)
	assert.True(t, coordsHit)
	assert.False(t, schedule.Fallback)
	assert.Equal(t, 4, schedule.Fajr.Hour())
}

func TestGetScheduleRejectsWrongDateEcho(t *testing.T) {
	// City endpoint answers for a date three days off; validation must
	// reject it and move on to the coordinate endpoint.
	city := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apiBody("27-08-2026", "04:14", "15:31"))
	}))
	defer city.Close()

	coords := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apiBody("25-08-2026", "04:15", "15:30"))
	}))
	defer coords.Close()

	c := testClient(t, city.URL, coords.URL)
	date := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	// One day of skew on the coordinate answer is tolerated.
	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)
	assert.False(t, schedule.Fallback)
	assert.Equal(t, 15, schedule.Asr.Hour())
	assert.Equal(t, 30, schedule.Asr.Minute())
}

func TestGetScheduleRejectsMissingLoadBearingTiming(t *testing.T) {
	city := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Asr at all.
		fmt.Fprint(w, `{"code":200,"data":{"timings":{"Fajr":"04:14"},"date":{"gregorian":{"date":"24-08-2026"}}}}`)
	}))
	defer city.Close()

	coords := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer coords.Close()

	c := testClient(t, city.URL, coords.URL)
	date := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)
	assert.True(t, schedule.Fallback, "missing Asr must degrade to the default schedule")
}

func TestGetScheduleUsesDefaultsWhenEverythingFails(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer down.Close()

	c := testClient(t, down.URL, down.URL)
	date := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)
	require.NotNil(t, schedule)

	assert.True(t, schedule.Fallback)
	assert.Equal(t, 5, schedule.Fajr.Hour())
	assert.Equal(t, 0, schedule.Fajr.Minute())
	assert.Equal(t, 15, schedule.Asr.Hour())
	assert.Equal(t, 24, schedule.Asr.Day())
}

func TestGetScheduleRetriesBeforeGivingUpOnEndpoint(t *testing.T) {
	var hits int
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "flake", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, apiBody("24-08-2026", "04:14", "15:31"))
	}))
	defer flaky.Close()

	c := testClient(t, flaky.URL, "http://unused.invalid")
	c.attempts = 2

	date := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	schedule, err := c.GetSchedule(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 2, hits)
	assert.False(t, schedule.Fallback)
}
