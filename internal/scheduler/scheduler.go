// Package scheduler owns the one-shot job register and the day-rollover
// loop that keeps the daily plan fresh.
package scheduler

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/elsisiem/muthaker-bot/internal/models"
)

// Poster executes the content action for a fired task.
type Poster interface {
	PostAthkar(ctx context.Context, kind models.AthkarKind) error
	PostQuranPages(ctx context.Context, low, high int) error
}

// Planner produces the current set of dated tasks.
type Planner interface {
	Plan(ctx context.Context, now time.Time) []models.PlannedTask
}

type Scheduler struct {
	planner Planner
	poster  Poster
	loc     *time.Location

	checkInterval time.Duration
	misfireGrace  time.Duration
	notifyCh      chan struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]models.PlannedTask
}

func New(planner Planner, poster Poster, loc *time.Location) *Scheduler {
	return &Scheduler{
		planner:       planner,
		poster:        poster,
		loc:           loc,
		checkInterval: 10 * time.Minute,
		misfireGrace:  5 * time.Minute,
		notifyCh:      make(chan struct{}, 1),
		timers:        make(map[string]*time.Timer),
		pending:       make(map[string]models.PlannedTask),
	}
}

// Notify triggers an immediate re-plan. Non-blocking if one is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// A re-plan is already queued, skip
	}
}

// Start runs the planning loop until the context is cancelled. A cron
// entry just after midnight triggers the day's fresh plan promptly; the
// low-frequency ticker catches date changes the cron missed (process
// suspended across midnight, clock jumps).
func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	s.replan(ctx)

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc("1 0 * * *", s.Notify); err != nil {
		log.Printf("Failed to register midnight re-plan: %v", err)
	}
	c.Start()
	defer c.Stop()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	lastDate := dateOf(time.Now().In(s.loc))
	for {
		select {
		case <-ctx.Done():
			s.clear()
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			today := dateOf(time.Now().In(s.loc))
			if today != lastDate {
				log.Printf("Calendar date changed to %s, re-planning", today)
				lastDate = today
				s.replan(ctx)
			}
		case <-s.notifyCh:
			lastDate = dateOf(time.Now().In(s.loc))
			s.replan(ctx)
		}
	}
}

func (s *Scheduler) replan(ctx context.Context) {
	tasks := s.planner.Plan(ctx, time.Now().In(s.loc))
	s.Register(ctx, tasks)
}

// Register replaces all pending one-shot jobs with the given tasks.
// Keys derive from (kind, fire date), so re-planning the same day is
// idempotent. Tasks whose fire time passed within the grace window fire
// immediately; older ones are dropped. An already-fired callback that
// lost the race with a re-plan is allowed to complete.
func (s *Scheduler) Register(ctx context.Context, tasks []models.PlannedTask) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
		delete(s.pending, key)
	}

	now := time.Now()
	for _, task := range tasks {
		delay := task.FireAt.Sub(now)
		if delay < 0 {
			if -delay > s.misfireGrace {
				log.Printf("Dropping %s: fire time %s is beyond the grace window",
					task.Kind, task.FireAt.Format("2006-01-02 15:04"))
				continue
			}
			delay = 0
		}

		key := task.Key()
		task := task
		s.pending[key] = task
		s.timers[key] = time.AfterFunc(delay, func() {
			s.fire(ctx, key, task)
		})
		log.Printf("Registered %s at %s", task.Kind, task.FireAt.Format("2006-01-02 15:04"))
	}
}

func (s *Scheduler) fire(ctx context.Context, key string, task models.PlannedTask) {
	s.mu.Lock()
	delete(s.timers, key)
	delete(s.pending, key)
	s.mu.Unlock()

	log.Printf("Firing %s (%s)", task.Kind, task.Label)

	var err error
	switch task.Kind {
	case models.TaskMorningAthkar:
		err = s.poster.PostAthkar(ctx, models.AthkarMorning)
	case models.TaskEveningAthkar:
		err = s.poster.PostAthkar(ctx, models.AthkarEvening)
	case models.TaskQuranPages:
		if task.Pages == nil {
			log.Printf("Quran task has no page range, skipping")
			return
		}
		err = s.poster.PostQuranPages(ctx, task.Pages.Low, task.Pages.High)
	default:
		log.Printf("Unknown task kind %q, skipping", task.Kind)
		return
	}
	if err != nil {
		log.Printf("Task %s failed: %v", task.Kind, err)
	}
}

// Pending returns the not-yet-fired tasks sorted by fire time.
func (s *Scheduler) Pending() []models.PlannedTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]models.PlannedTask, 0, len(s.pending))
	for _, task := range s.pending {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].FireAt.Before(tasks[j].FireAt)
	})
	return tasks
}

func (s *Scheduler) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
		delete(s.pending, key)
	}
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
