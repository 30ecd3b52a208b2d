package models

import "time"

// AthkarKind is one of the two recurring devotional post types.
type AthkarKind string

const (
	AthkarMorning AthkarKind = "morning"
	AthkarEvening AthkarKind = "evening"
)

// Opposite returns the other athkar kind. Posting one kind deletes the
// previously posted message of the opposite kind.
func (k AthkarKind) Opposite() AthkarKind {
	if k == AthkarMorning {
		return AthkarEvening
	}
	return AthkarMorning
}

// AthkarMessage records the most recently posted message for a kind.
type AthkarMessage struct {
	Kind      AthkarKind
	MessageID int
	PostedAt  time.Time
}

// BotState mirrors the legacy counter-based rotation row. The anchor-based
// page rotation never reads it; it is written after each successful Quran
// post for compatibility with older deployments.
type BotState struct {
	ID        int
	QuranPage int
	UpdatedAt time.Time
}
