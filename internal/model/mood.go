package model

import "time"

// Mood is a single mood check-in. Immutable after creation except delete.
type Mood struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Mood      string    `json:"mood"`
	Reason    string    `json:"reason"`
	Intensity int       `json:"intensity"`
	Energy    int       `json:"energy"`
	Tags      []string  `json:"tags"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}
