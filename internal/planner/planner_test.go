package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsisiem/muthaker-bot/internal/models"
	"github.com/elsisiem/muthaker-bot/internal/quran"
)

type fakeSource struct {
	schedules map[string]*models.PrayerSchedule
	err       error
	calls     []string
}

func (f *fakeSource) GetSchedule(ctx context.Context, date time.Time) (*models.PrayerSchedule, error) {
	key := date.Format("2006-01-02")
	f.calls = append(f.calls, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.schedules[key], nil
}

func scheduleFor(t *testing.T, loc *time.Location, year int, month time.Month, day, fajrHour, fajrMin, asrHour, asrMin int) *models.PrayerSchedule {
	t.Helper()
	return &models.PrayerSchedule{
		Date: time.Date(year, month, day, 0, 0, 0, 0, loc),
		Fajr: time.Date(year, month, day, fajrHour, fajrMin, 0, 0, loc),
		Asr:  time.Date(year, month, day, asrHour, asrMin, 0, 0, loc),
	}
}

func newTestPlanner(t *testing.T, source ScheduleSource) (*Planner, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)
	return New(source, DefaultOffsets(), loc), loc
}

func findTask(t *testing.T, tasks []models.PlannedTask, kind models.TaskKind) models.PlannedTask {
	t.Helper()
	for _, task := range tasks {
		if task.Kind == kind {
			return task
		}
	}
	t.Fatalf("no %s task in plan", kind)
	return models.PlannedTask{}
}

func TestPlanAllTasksStillAhead(t *testing.T) {
	source := &fakeSource{schedules: map[string]*models.PrayerSchedule{}}
	p, loc := newTestPlanner(t, source)

	source.schedules["2026-08-24"] = scheduleFor(t, loc, 2026, time.August, 24, 4, 14, 15, 31)

	// Just after midnight, everything is still ahead.
	now := time.Date(2026, time.August, 24, 0, 30, 0, 0, loc)
	tasks := p.Plan(context.Background(), now)
	require.Len(t, tasks, 3)

	morning := findTask(t, tasks, models.TaskMorningAthkar)
	evening := findTask(t, tasks, models.TaskEveningAthkar)
	pages := findTask(t, tasks, models.TaskQuranPages)

	assert.Equal(t, time.Date(2026, time.August, 24, 4, 49, 0, 0, loc), morning.FireAt) // Fajr + 35m
	assert.Equal(t, time.Date(2026, time.August, 24, 16, 1, 0, 0, loc), evening.FireAt) // Asr + 30m
	assert.Equal(t, time.Date(2026, time.August, 24, 16, 11, 0, 0, loc), pages.FireAt)  // evening + 10m

	// Single fetch: tomorrow was never needed.
	assert.Equal(t, []string{"2026-08-24"}, source.calls)

	// Sorted by fire time.
	assert.True(t, tasks[0].FireAt.Before(tasks[1].FireAt))
	assert.True(t, tasks[1].FireAt.Before(tasks[2].FireAt))
}

func TestPlanElapsedEveningMovesToTomorrowButNotQuran(t *testing.T) {
	source := &fakeSource{schedules: map[string]*models.PrayerSchedule{}}
	p, loc := newTestPlanner(t, source)

	source.schedules["2026-08-24"] = scheduleFor(t, loc, 2026, time.August, 24, 4, 14, 15, 31)
	source.schedules["2026-08-25"] = scheduleFor(t, loc, 2026, time.August, 25, 4, 15, 15, 30)

	// After the evening fire (16:01) but before the Quran fire (16:11).
	now := time.Date(2026, time.August, 24, 16, 5, 0, 0, loc)
	tasks := p.Plan(context.Background(), now)
	require.Len(t, tasks, 3)

	morning := findTask(t, tasks, models.TaskMorningAthkar)
	evening := findTask(t, tasks, models.TaskEveningAthkar)
	pages := findTask(t, tasks, models.TaskQuranPages)

	// Morning and evening already elapsed: both on tomorrow's schedule.
	assert.Equal(t, time.Date(2026, time.August, 25, 4, 50, 0, 0, loc), morning.FireAt)
	assert.Equal(t, time.Date(2026, time.August, 25, 16, 0, 0, 0, loc), evening.FireAt)

	// The still-future Quran task must not move.
	assert.Equal(t, time.Date(2026, time.August, 24, 16, 11, 0, 0, loc), pages.FireAt)

	// Tomorrow was fetched exactly once despite two rolled-over tasks.
	assert.Equal(t, []string{"2026-08-24", "2026-08-25"}, source.calls)
}

func TestPlanQuranPagesMatchFireDate(t *testing.T) {
	source := &fakeSource{schedules: map[string]*models.PrayerSchedule{}}
	p, loc := newTestPlanner(t, source)

	source.schedules["2026-08-24"] = scheduleFor(t, loc, 2026, time.August, 24, 4, 14, 15, 31)
	source.schedules["2026-08-25"] = scheduleFor(t, loc, 2026, time.August, 25, 4, 15, 15, 30)

	// Everything for today has elapsed: the Quran task lands tomorrow and
	// must carry tomorrow's pages.
	now := time.Date(2026, time.August, 24, 23, 0, 0, 0, loc)
	tasks := p.Plan(context.Background(), now)

	pages := findTask(t, tasks, models.TaskQuranPages)
	require.NotNil(t, pages.Pages)
	assert.Equal(t, 25, pages.FireAt.Day())

	wantLow, wantHigh := quran.PagesFor(time.Date(2026, time.August, 25, 0, 0, 0, 0, loc))
	assert.Equal(t, wantLow, pages.Pages.Low)
	assert.Equal(t, wantHigh, pages.Pages.High)
}

func TestPlanFallsBackToDefaultScheduleOnTotalFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("provider down")}
	p, loc := newTestPlanner(t, source)

	now := time.Date(2026, time.August, 24, 1, 0, 0, 0, loc)
	tasks := p.Plan(context.Background(), now)

	require.Len(t, tasks, 3, "a failing gateway must still yield a full plan")

	morning := findTask(t, tasks, models.TaskMorningAthkar)
	// Default Fajr 05:00 + 35m.
	assert.Equal(t, time.Date(2026, time.August, 24, 5, 35, 0, 0, loc), morning.FireAt)
}

func TestPlanSkipsTaskWithMissingTiming(t *testing.T) {
	source := &fakeSource{schedules: map[string]*models.PrayerSchedule{}}
	p, loc := newTestPlanner(t, source)

	// Today and tomorrow both have Asr but no Fajr.
	today := scheduleFor(t, loc, 2026, time.August, 24, 0, 0, 15, 31)
	today.Fajr = time.Time{}
	tomorrow := scheduleFor(t, loc, 2026, time.August, 25, 0, 0, 15, 30)
	tomorrow.Fajr = time.Time{}
	source.schedules["2026-08-24"] = today
	source.schedules["2026-08-25"] = tomorrow

	now := time.Date(2026, time.August, 24, 1, 0, 0, 0, loc)
	tasks := p.Plan(context.Background(), now)

	// The morning task is skipped; the other two survive.
	require.Len(t, tasks, 2)
	assert.Equal(t, models.TaskEveningAthkar, tasks[0].Kind)
	assert.Equal(t, models.TaskQuranPages, tasks[1].Kind)
}
