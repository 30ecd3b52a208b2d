// Package prayertimes fetches a day's canonical prayer times from the
// aladhan.com API, falling back from the city-keyed endpoint to the
// coordinate-keyed one and finally to static default times.
package prayertimes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elsisiem/muthaker-bot/internal/models"
)

const (
	cityEndpoint   = "https://api.aladhan.com/v1/timingsByCity"
	coordsEndpoint = "https://api.aladhan.com/v1/timings"

	// The API takes and echoes dates as DD-MM-YYYY.
	dateLayout = "02-01-2006"
)

// Static defaults used when every provider attempt fails. Approximate
// times for the configured location; degraded but better than no plan.
var defaultTimings = map[string]string{
	"Fajr":    "05:00",
	"Dhuhr":   "12:00",
	"Asr":     "15:00",
	"Maghrib": "18:00",
	"Isha":    "19:30",
}

type Client struct {
	httpClient *http.Client
	cityURL    string
	coordsURL  string

	city      string
	country   string
	method    int
	latitude  float64
	longitude float64
	loc       *time.Location

	attempts int
	backoff  time.Duration
}

func New(city, country string, method int, latitude, longitude float64, loc *time.Location) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cityURL:    cityEndpoint,
		coordsURL:  coordsEndpoint,
		city:       city,
		country:    country,
		method:     method,
		latitude:   latitude,
		longitude:  longitude,
		loc:        loc,
		attempts:   2,
		backoff:    2 * time.Second,
	}
}

type apiResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Gregorian struct {
				Date string `json:"date"`
			} `json:"gregorian"`
		} `json:"date"`
	} `json:"data"`
}

// GetSchedule fetches the prayer schedule for the given calendar date.
// It never fails outright: when both endpoints are exhausted it returns
// the static default schedule with Fallback set, so callers can log
// degraded operation but always have something to plan against.
func (c *Client) GetSchedule(ctx context.Context, date time.Time) (*models.PrayerSchedule, error) {
	schedule, cityErr := c.fetchWithRetry(ctx, c.cityURL, c.cityParams(date), date)
	if cityErr == nil {
		return schedule, nil
	}
	log.Printf("City prayer-times endpoint failed for %s: %v", date.Format(dateLayout), cityErr)

	schedule, coordsErr := c.fetchWithRetry(ctx, c.coordsURL, c.coordsParams(date), date)
	if coordsErr == nil {
		return schedule, nil
	}
	log.Printf("Coordinate prayer-times endpoint failed for %s: %v", date.Format(dateLayout), coordsErr)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	log.Printf("All prayer-times sources exhausted for %s, using default times", date.Format(dateLayout))
	return DefaultSchedule(date, c.loc), nil
}

func (c *Client) cityParams(date time.Time) url.Values {
	params := url.Values{}
	params.Set("city", c.city)
	params.Set("country", c.country)
	params.Set("method", strconv.Itoa(c.method))
	params.Set("date", date.Format(dateLayout))
	return params
}

func (c *Client) coordsParams(date time.Time) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	params.Set("method", strconv.Itoa(c.method))
	params.Set("date", date.Format(dateLayout))
	return params
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint string, params url.Values, date time.Time) (*models.PrayerSchedule, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		schedule, err := c.fetch(ctx, endpoint, params, date)
		if err == nil {
			return schedule, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, date time.Time) (*models.PrayerSchedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if err := validateDateEcho(body.Data.Date.Gregorian.Date, date); err != nil {
		return nil, err
	}

	return c.buildSchedule(body.Data.Timings, date)
}

// validateDateEcho checks the date the provider claims to answer for.
// One day of skew is tolerated to absorb provider timezone quirks.
func validateDateEcho(echo string, requested time.Time) error {
	if echo == "" {
		return fmt.Errorf("response is missing the gregorian date echo")
	}
	got, err := time.Parse(dateLayout, echo)
	if err != nil {
		return fmt.Errorf("malformed gregorian date echo %q: %w", echo, err)
	}
	want := time.Date(requested.Year(), requested.Month(), requested.Day(), 0, 0, 0, 0, time.UTC)
	skew := got.Sub(want)
	if skew < 0 {
		skew = -skew
	}
	if skew > 24*time.Hour {
		return fmt.Errorf("response date %s does not match requested date %s", echo, requested.Format(dateLayout))
	}
	return nil
}

func (c *Client) buildSchedule(timings map[string]string, date time.Time) (*models.PrayerSchedule, error) {
	fajr, err := c.timingToTime(timings["Fajr"], date)
	if err != nil {
		return nil, fmt.Errorf("bad Fajr timing: %w", err)
	}
	asr, err := c.timingToTime(timings["Asr"], date)
	if err != nil {
		return nil, fmt.Errorf("bad Asr timing: %w", err)
	}

	schedule := &models.PrayerSchedule{
		Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc),
		Fajr: fajr,
		Asr:  asr,
	}

	// Only Fajr and Asr are load-bearing; the rest are best-effort.
	if t, err := c.timingToTime(timings["Dhuhr"], date); err == nil {
		schedule.Dhuhr = t
	}
	if t, err := c.timingToTime(timings["Maghrib"], date); err == nil {
		schedule.Maghrib = t
	}
	if t, err := c.timingToTime(timings["Isha"], date); err == nil {
		schedule.Isha = t
	}

	return schedule, nil
}

// timingToTime turns an HH:MM timing into a wall-clock moment on the given
// date. The provider sometimes appends a timezone hint ("04:14 (EET)"),
// which is stripped first.
func (c *Client) timingToTime(timing string, date time.Time) (time.Time, error) {
	timing = strings.TrimSpace(timing)
	if i := strings.Index(timing, " "); i > 0 {
		timing = timing[:i]
	}
	parsed, err := time.Parse("15:04", timing)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timing %q: %w", timing, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, c.loc), nil
}

// DefaultSchedule builds the static fallback schedule for a date.
func DefaultSchedule(date time.Time, loc *time.Location) *models.PrayerSchedule {
	at := func(timing string) time.Time {
		parsed, _ := time.Parse("15:04", timing)
		return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
	}
	return &models.PrayerSchedule{
		Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc),
		Fajr:     at(defaultTimings["Fajr"]),
		Dhuhr:    at(defaultTimings["Dhuhr"]),
		Asr:      at(defaultTimings["Asr"]),
		Maghrib:  at(defaultTimings["Maghrib"]),
		Isha:     at(defaultTimings["Isha"]),
		Fallback: true,
	}
}
