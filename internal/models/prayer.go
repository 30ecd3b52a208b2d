package models

import "time"

// PrayerSchedule holds one day's canonical prayer times, already resolved
// to wall-clock moments in the bot's timezone. Immutable once fetched.
type PrayerSchedule struct {
	Date    time.Time
	Fajr    time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
	// Fallback is true when the schedule was built from static default
	// times because every provider attempt failed.
	Fallback bool
}
