package model

import "time"

type Habit struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	TargetFrequency  string    `json:"target_frequency"`
	CurrentStreak    int       `json:"current_streak"`
	BestStreak       int       `json:"best_streak"`
	TotalCompletions int       `json:"total_completions"`
	IsActive         bool      `json:"is_active"`
	SuccessRate      int       `json:"success_rate"` // derived, not stored
	CreatedAt        time.Time `json:"created_at"`
}

// HabitCompletion records one habit done on one calendar day.
// At most one row exists per (habit, day).
type HabitCompletion struct {
	ID          int64     `json:"id"`
	HabitID     int64     `json:"habit_id"`
	UserID      int64     `json:"user_id"`
	CompletedOn string    `json:"completed_on"` // YYYY-MM-DD
	Rating      int       `json:"rating"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
