package model

import "time"

// JournalEntry holds a journal entry plus the metrics derived from its
// content (sentiment, word count, reading time), recomputed on every save.
type JournalEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Sentiment   string    `json:"sentiment"`
	WordCount   int       `json:"word_count"`
	ReadingTime int       `json:"reading_time"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
