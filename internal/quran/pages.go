// Package quran derives the daily two-page mushaf excerpt from the
// calendar date alone. The rotation is a pure function of days elapsed
// since a fixed anchor, so it survives restarts, skipped days and retries
// without any persisted counter.
package quran

import "time"

// TotalPages is the number of pages in the mushaf.
const TotalPages = 604

// The anchor: on anchorDate the posted pages were (anchorLow, anchorLow+1).
// Every following day advances both pages by 2.
const anchorLow = 2

var anchorDate = time.Date(2025, time.May, 27, 0, 0, 0, 0, time.UTC)

// PagesFor returns the two mushaf pages for the given calendar date.
// Pure and total: the same date always yields the same pair, consecutive
// dates advance by exactly 2, and both values stay inside [1, TotalPages].
// At the wrap boundary the pair is (TotalPages, 1).
func PagesFor(date time.Time) (low, high int) {
	offset := anchorLow + 2*daysSince(anchorDate, date)
	return wrap(offset), wrap(offset + 1)
}

// daysSince counts calendar days between the anchor and the given date,
// ignoring the time of day and timezone of the input. Negative when the
// date precedes the anchor.
func daysSince(anchor, date time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(anchor).Hours() / 24)
}

// wrap maps any page offset into [1, TotalPages] with floored modulo, so
// page TotalPages+1 becomes page 1 and page 0 becomes page TotalPages.
func wrap(page int) int {
	m := (page - 1) % TotalPages
	if m < 0 {
		m += TotalPages
	}
	return m + 1
}
