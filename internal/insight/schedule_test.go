package insight

import (
	"testing"
	"time"
)

func TestDaysUntilDueToday(t *testing.T) {
	now := time.Date(2025, 6, 20, 15, 30, 0, 0, time.UTC)
	due := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	if got := DaysUntil(due, now); got != 0 {
		t.Errorf("days = %d, want 0", got)
	}
}

func TestDaysUntilOverdue(t *testing.T) {
	now := time.Date(2025, 6, 20, 1, 0, 0, 0, time.UTC)
	due := time.Date(2025, 6, 19, 23, 0, 0, 0, time.UTC)

	if got := DaysUntil(due, now); got != -1 {
		t.Errorf("days = %d, want -1", got)
	}
}

func TestDaysUntilFuture(t *testing.T) {
	now := time.Date(2025, 6, 20, 23, 59, 0, 0, time.UTC)
	due := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)

	if got := DaysUntil(due, now); got != 7 {
		t.Errorf("days = %d, want 7", got)
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, 6, 20, 23, 0, 0, 0, time.UTC)
	due := time.Date(2025, 6, 21, 1, 0, 0, 0, time.UTC)

	if got := DaysUntil(due, now); got != 1 {
		t.Errorf("days = %d, want 1", got)
	}
}
