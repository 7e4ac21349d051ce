package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/flourish/internal/model"
)

type MoodStore struct {
	db *sql.DB
}

func NewMoodStore(db *sql.DB) *MoodStore {
	return &MoodStore{db: db}
}

func scanMood(scanner interface{ Scan(...any) error }) (*model.Mood, error) {
	var m model.Mood
	var tags string

	err := scanner.Scan(
		&m.ID, &m.UserID, &m.Mood, &m.Reason, &m.Intensity, &m.Energy,
		&tags, &m.Location, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Tags = decodeTags(tags)
	return &m, nil
}

const moodCols = `id, user_id, mood, reason, intensity, energy, tags, location, created_at`

func (s *MoodStore) Create(userID int64, mood, reason string, intensity, energy int, tags []string, location string) (*model.Mood, error) {
	result, err := s.db.Exec(
		`INSERT INTO moods (user_id, mood, reason, intensity, energy, tags, location) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, mood, reason, intensity, energy, encodeTags(tags), location,
	)
	if err != nil {
		return nil, fmt.Errorf("insert mood: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *MoodStore) GetByID(id, userID int64) (*model.Mood, error) {
	row := s.db.QueryRow(`SELECT `+moodCols+` FROM moods WHERE id = ? AND user_id = ?`, id, userID)
	m, err := scanMood(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mood: %w", err)
	}
	return m, nil
}

// List returns the user's moods newest-first, capped at limit.
func (s *MoodStore) List(userID int64, limit int) ([]model.Mood, error) {
	rows, err := s.db.Query(
		`SELECT `+moodCols+` FROM moods WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()

	var moods []model.Mood
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		moods = append(moods, *m)
	}
	return moods, rows.Err()
}

func (s *MoodStore) Count(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM moods WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count moods: %w", err)
	}
	return count, nil
}

func (s *MoodStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM moods WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete mood: %w", err)
	}
	return nil
}
