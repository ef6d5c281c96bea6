package dates

import "time"

// Truncate strips the time-of-day component, leaving a UTC calendar date.
// DayBooks are keyed by this value.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two instants fall on the same UTC calendar date.
func SameDate(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}

// PreviousDate returns the calendar date immediately before t.
func PreviousDate(t time.Time) time.Time {
	return Truncate(t).AddDate(0, 0, -1)
}
