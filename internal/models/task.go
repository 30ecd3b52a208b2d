package models

import "time"

type TaskKind string

const (
	TaskMorningAthkar TaskKind = "morning_athkar"
	TaskEveningAthkar TaskKind = "evening_athkar"
	TaskQuranPages    TaskKind = "quran_pages"
)

// PageRange is the inclusive pair of mushaf pages attached to a Quran task.
type PageRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// PlannedTask is one dated action produced by a planning pass. The full
// set for the current horizon is replaced on every re-plan, never merged.
type PlannedTask struct {
	Kind   TaskKind
	FireAt time.Time
	Label  string
	Pages  *PageRange // set only for TaskQuranPages
}

// Key identifies the task for one-shot registration. Re-planning the same
// day produces the same key, so re-registering replaces instead of
// duplicating.
func (t PlannedTask) Key() string {
	return string(t.Kind) + ":" + t.FireAt.Format("2006-01-02")
}
