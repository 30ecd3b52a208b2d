// Package planner turns a day's prayer schedule into the day's three
// dated actions: morning athkar, evening athkar and the Quran pages post.
package planner

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/elsisiem/muthaker-bot/internal/models"
	"github.com/elsisiem/muthaker-bot/internal/prayertimes"
	"github.com/elsisiem/muthaker-bot/internal/quran"
)

// ScheduleSource yields a day's prayer schedule.
type ScheduleSource interface {
	GetSchedule(ctx context.Context, date time.Time) (*models.PrayerSchedule, error)
}

// Offsets are the fixed delays between a prayer time and its post.
type Offsets struct {
	Morning time.Duration // after Fajr
	Evening time.Duration // after Asr
	Quran   time.Duration // after the evening athkar
}

func DefaultOffsets() Offsets {
	return Offsets{
		Morning: 35 * time.Minute,
		Evening: 30 * time.Minute,
		Quran:   10 * time.Minute,
	}
}

type Planner struct {
	source  ScheduleSource
	offsets Offsets
	loc     *time.Location
}

func New(source ScheduleSource, offsets Offsets, loc *time.Location) *Planner {
	return &Planner{
		source:  source,
		offsets: offsets,
		loc:     loc,
	}
}

// Plan computes the tasks for the current horizon, sorted by fire time.
// A task whose own fire time has already passed is re-computed against
// tomorrow's schedule; sibling tasks are evaluated independently, so the
// morning athkar can stay on today while the rest move to tomorrow.
func (p *Planner) Plan(ctx context.Context, now time.Time) []models.PlannedTask {
	now = now.In(p.loc)
	today := p.schedule(ctx, now)

	// Tomorrow's schedule is fetched at most once, and only when needed.
	var tomorrowMemo *models.PrayerSchedule
	tomorrow := func() *models.PrayerSchedule {
		if tomorrowMemo == nil {
			tomorrowMemo = p.schedule(ctx, now.AddDate(0, 0, 1))
		}
		return tomorrowMemo
	}

	tasks := make([]models.PlannedTask, 0, 3)

	if fireAt, ok := p.fireTime(today, tomorrow, now, p.morningFire); ok {
		tasks = append(tasks, models.PlannedTask{
			Kind:   models.TaskMorningAthkar,
			FireAt: fireAt,
			Label:  "morning athkar",
		})
	}

	if fireAt, ok := p.fireTime(today, tomorrow, now, p.eveningFire); ok {
		tasks = append(tasks, models.PlannedTask{
			Kind:   models.TaskEveningAthkar,
			FireAt: fireAt,
			Label:  "evening athkar",
		})
	}

	if fireAt, ok := p.fireTime(today, tomorrow, now, p.quranFire); ok {
		// The page pair must match the calendar date the post actually
		// lands on, not the date of planning.
		low, high := quran.PagesFor(fireAt)
		tasks = append(tasks, models.PlannedTask{
			Kind:   models.TaskQuranPages,
			FireAt: fireAt,
			Label:  "quran pages",
			Pages:  &models.PageRange{Low: low, High: high},
		})
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].FireAt.Before(tasks[j].FireAt)
	})
	return tasks
}

func (p *Planner) morningFire(s *models.PrayerSchedule) (time.Time, bool) {
	if s.Fajr.IsZero() {
		return time.Time{}, false
	}
	return s.Fajr.Add(p.offsets.Morning), true
}

func (p *Planner) eveningFire(s *models.PrayerSchedule) (time.Time, bool) {
	if s.Asr.IsZero() {
		return time.Time{}, false
	}
	return s.Asr.Add(p.offsets.Evening), true
}

func (p *Planner) quranFire(s *models.PrayerSchedule) (time.Time, bool) {
	fire, ok := p.eveningFire(s)
	if !ok {
		return time.Time{}, false
	}
	return fire.Add(p.offsets.Quran), true
}

// fireTime evaluates one task's fire time against today's schedule and,
// when that moment has already elapsed, against tomorrow's. A schedule
// without the needed timing skips the single task, never the whole plan.
func (p *Planner) fireTime(today *models.PrayerSchedule, tomorrow func() *models.PrayerSchedule, now time.Time, compute func(*models.PrayerSchedule) (time.Time, bool)) (time.Time, bool) {
	fireAt, ok := compute(today)
	if ok && fireAt.After(now) {
		return fireAt, true
	}
	fireAt, ok = compute(tomorrow())
	if !ok {
		log.Printf("Schedule is missing a timing, skipping task")
		return time.Time{}, false
	}
	return fireAt, true
}

// schedule fetches a day's prayer times, degrading to the static defaults
// so a planning pass always has something to work with.
func (p *Planner) schedule(ctx context.Context, date time.Time) *models.PrayerSchedule {
	s, err := p.source.GetSchedule(ctx, date)
	if err != nil || s == nil {
		log.Printf("Prayer times unavailable for %s, using defaults: %v", date.Format("2006-01-02"), err)
		return prayertimes.DefaultSchedule(date, p.loc)
	}
	if s.Fallback {
		log.Printf("Planning %s with fallback prayer times", date.Format("2006-01-02"))
	}
	return s
}
