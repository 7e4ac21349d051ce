package insight

import "time"

// NextStreak computes the streak values after a completion is recorded.
// A completion that follows yesterday's extends the run; otherwise the run
// restarts at 1 (never 0, today's completion counts). Best never decreases.
func NextStreak(current, best int, completedYesterday bool) (newCurrent, newBest int) {
	if completedYesterday {
		newCurrent = current + 1
	} else {
		newCurrent = 1
	}
	newBest = best
	if newCurrent > best {
		newBest = newCurrent
	}
	return newCurrent, newBest
}

// SuccessRate returns the percentage of days since creation on which the
// habit was completed, rounded to the nearest integer. A habit created
// today divides by one day, not zero.
func SuccessRate(totalCompletions int, createdAt, now time.Time) int {
	days := int(now.Sub(createdAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return int(float64(totalCompletions)/float64(days)*100 + 0.5)
}
