package core

import "time"

// NowFunc returns the current time; tests swap it out to freeze the clock.
var NowFunc = time.Now

// DateLayout is the storage layout for calendar dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DaysBetween returns the number of whole calendar days from `from` back to `to`.
// Both times are truncated to midnight before subtracting.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(f.Sub(t).Hours() / 24)
}
