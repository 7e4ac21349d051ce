package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/flourish/internal/model"
)

type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func scanJournalEntry(scanner interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var tags string

	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Content, &e.Category, &tags,
		&e.Sentiment, &e.WordCount, &e.ReadingTime, &e.IsFavorite,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Tags = decodeTags(tags)
	return &e, nil
}

const journalCols = `id, user_id, title, content, category, tags, sentiment, word_count, reading_time, is_favorite, created_at, updated_at`

// Create persists an entry. Sentiment, word count, and reading time are
// computed by the caller from the content before the write.
func (s *JournalStore) Create(userID int64, title, content, category string, tags []string, sentiment string, wordCount, readingTime int) (*model.JournalEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO journal_entries (user_id, title, content, category, tags, sentiment, word_count, reading_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, title, content, category, encodeTags(tags), sentiment, wordCount, readingTime,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *JournalStore) GetByID(id, userID int64) (*model.JournalEntry, error) {
	row := s.db.QueryRow(`SELECT `+journalCols+` FROM journal_entries WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanJournalEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return e, nil
}

func (s *JournalStore) List(userID int64, limit int) ([]model.JournalEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+journalCols+` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *JournalStore) Update(id, userID int64, title, content, category string, tags []string, sentiment string, wordCount, readingTime int) (*model.JournalEntry, error) {
	_, err := s.db.Exec(
		`UPDATE journal_entries SET title = ?, content = ?, category = ?, tags = ?, sentiment = ?, word_count = ?, reading_time = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		title, content, category, encodeTags(tags), sentiment, wordCount, readingTime, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}
	return s.GetByID(id, userID)
}

// ToggleFavorite flips the favorite flag and returns the updated entry, or
// nil if the entry does not exist.
func (s *JournalStore) ToggleFavorite(id, userID int64) (*model.JournalEntry, error) {
	result, err := s.db.Exec(
		`UPDATE journal_entries SET is_favorite = NOT is_favorite, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(id, userID)
}

func (s *JournalStore) Count(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM journal_entries WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return count, nil
}

func (s *JournalStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM journal_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return nil
}
