package model

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

type Task struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	DaysUntilDue      *int       `json:"days_until_due"` // derived, not stored
	Category          string     `json:"category"`
	Status            string     `json:"status"`
	EstimatedDuration *int       `json:"estimated_duration"`
	ActualDuration    *int       `json:"actual_duration"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
