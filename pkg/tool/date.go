package tool

import "time"

// DateOnly truncates t to midnight in its own location. Batch dates and
// delivery dates are calendar dates; equality comparisons in SQL depend on
// every writer normalizing this way.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
