package utils

import "time"

// WeekWindow returns the Sunday-to-Saturday week containing t, both bounds at
// midnight in t's location.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start, end
}
