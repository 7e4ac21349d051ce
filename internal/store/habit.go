package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/flourish/internal/insight"
	"github.com/dukerupert/flourish/internal/model"
)

// ErrAlreadyCompletedToday is returned by Complete when the habit already
// has a completion for the current calendar day.
var ErrAlreadyCompletedToday = errors.New("habit already completed today")

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Category, &h.TargetFrequency,
		&h.CurrentStreak, &h.BestStreak, &h.TotalCompletions, &h.IsActive, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.SuccessRate = insight.SuccessRate(h.TotalCompletions, h.CreatedAt, time.Now().UTC())
	return &h, nil
}

const habitCols = `id, user_id, name, description, category, target_frequency, current_streak, best_streak, total_completions, is_active, created_at`

func (s *HabitStore) Create(userID int64, name, description, category, targetFrequency string) (*model.Habit, error) {
	result, err := s.db.Exec(
		`INSERT INTO habits (user_id, name, description, category, target_frequency) VALUES (?, ?, ?, ?, ?)`,
		userID, name, description, category, targetFrequency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *HabitStore) GetByID(id, userID int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

func (s *HabitStore) List(userID int64) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()
	return collectHabits(rows)
}

func (s *HabitStore) ListActive(userID int64, limit int) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? AND is_active = 1 ORDER BY current_streak DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list active habits: %w", err)
	}
	defer rows.Close()
	return collectHabits(rows)
}

// ActiveNotCompletedOn returns active habits without a completion on the
// given day (YYYY-MM-DD). Used by the reminder scheduler.
func (s *HabitStore) ActiveNotCompletedOn(userID int64, day string) ([]model.Habit, error) {
	rows, err := s.db.Query(
		`SELECT `+habitCols+` FROM habits
		 WHERE user_id = ? AND is_active = 1
		 AND id NOT IN (SELECT habit_id FROM habit_completions WHERE user_id = ? AND completed_on = ?)
		 ORDER BY id`,
		userID, userID, day,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits not completed on %s: %w", day, err)
	}
	defer rows.Close()
	return collectHabits(rows)
}

func collectHabits(rows *sql.Rows) ([]model.Habit, error) {
	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (s *HabitStore) Update(id, userID int64, name, description, category, targetFrequency string, isActive bool) (*model.Habit, error) {
	_, err := s.db.Exec(
		`UPDATE habits SET name = ?, description = ?, category = ?, target_frequency = ?, is_active = ? WHERE id = ? AND user_id = ?`,
		name, description, category, targetFrequency, isActive, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return s.GetByID(id, userID)
}

// Complete records today's completion and advances the streak counters in
// one transaction. A second completion on the same day returns
// ErrAlreadyCompletedToday and leaves the habit untouched.
func (s *HabitStore) Complete(id, userID int64, rating int, notes string, now time.Time) (*model.Habit, error) {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin complete habit: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}

	var exists int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM habit_completions WHERE habit_id = ? AND completed_on = ?`,
		id, today,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check completion: %w", err)
	}
	if exists > 0 {
		return h, ErrAlreadyCompletedToday
	}

	var doneYesterday int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM habit_completions WHERE habit_id = ? AND completed_on = ?`,
		id, yesterday,
	).Scan(&doneYesterday)
	if err != nil {
		return nil, fmt.Errorf("check previous day: %w", err)
	}

	current, best := insight.NextStreak(h.CurrentStreak, h.BestStreak, doneYesterday > 0)

	_, err = tx.Exec(
		`INSERT INTO habit_completions (habit_id, user_id, completed_on, rating, notes) VALUES (?, ?, ?, ?, ?)`,
		id, userID, today, rating, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE habits SET current_streak = ?, best_streak = ?, total_completions = total_completions + 1 WHERE id = ?`,
		current, best, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update streaks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete habit: %w", err)
	}
	return s.GetByID(id, userID)
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.HabitCompletion, error) {
	var c model.HabitCompletion
	err := scanner.Scan(&c.ID, &c.HabitID, &c.UserID, &c.CompletedOn, &c.Rating, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, habit_id, user_id, completed_on, rating, notes, created_at`

func (s *HabitStore) ListCompletions(habitID, userID int64, limit int) ([]model.HabitCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM habit_completions WHERE habit_id = ? AND user_id = ? ORDER BY completed_on DESC LIMIT ?`,
		habitID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.HabitCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

func (s *HabitStore) CountActive(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM habits WHERE user_id = ? AND is_active = 1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active habits: %w", err)
	}
	return count, nil
}

func (s *HabitStore) TopStreak(userID int64) (int, error) {
	var top sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(current_streak) FROM habits WHERE user_id = ?`, userID).Scan(&top)
	if err != nil {
		return 0, fmt.Errorf("top streak: %w", err)
	}
	return int(top.Int64), nil
}

func (s *HabitStore) TotalCompletions(userID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(total_completions) FROM habits WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total completions: %w", err)
	}
	return int(total.Int64), nil
}

func (s *HabitStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM habits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}
