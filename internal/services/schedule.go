package services

import (
	"time"
)

// dateOnly truncates a timestamp to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextDueDate advances a due date by one calendar month, landing on
// anchorDay clamped to the target month's length.
//
// The anchor day comes from the loan's original due date, so a cadence that
// passes through a short month recovers: Jan 31 -> Feb 28 -> Mar 31, never
// drifting down to the 28th for good.
func NextDueDate(current time.Time, anchorDay int) time.Time {
	firstOfNext := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, time.UTC)

	day := anchorDay
	if max := daysInMonth(firstOfNext.Year(), firstOfNext.Month()); day > max {
		day = max
	}

	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, time.UTC)
}
