package model

import "time"

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

type Goal struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	TargetDate      *time.Time `json:"target_date"`
	DaysUntilTarget *int       `json:"days_until_target"` // derived, not stored
	Progress        int        `json:"progress"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
