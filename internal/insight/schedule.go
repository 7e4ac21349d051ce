package insight

import "time"

// DaysUntil returns the calendar-day difference between date and now.
// Negative means overdue, zero means due today. Time-of-day is ignored.
func DaysUntil(date, now time.Time) int {
	return int(startOfDay(date).Sub(startOfDay(now)).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
