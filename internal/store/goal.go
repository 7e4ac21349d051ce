package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/flourish/internal/insight"
	"github.com/dukerupert/flourish/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var targetDate sql.NullTime

	err := scanner.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.Priority,
		&targetDate, &g.Progress, &g.Status, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if targetDate.Valid {
		g.TargetDate = &targetDate.Time
		days := insight.DaysUntil(targetDate.Time, time.Now())
		g.DaysUntilTarget = &days
	}
	return &g, nil
}

const goalCols = `id, user_id, title, description, category, priority, target_date, progress, status, created_at, updated_at`

func (s *GoalStore) Create(userID int64, title, description, category, priority string, targetDate *time.Time) (*model.Goal, error) {
	result, err := s.db.Exec(
		`INSERT INTO goals (user_id, title, description, category, priority, target_date) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, title, description, category, priority, targetDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *GoalStore) GetByID(id, userID int64) (*model.Goal, error) {
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) List(userID int64) ([]model.Goal, error) {
	rows, err := s.db.Query(
		`SELECT `+goalCols+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

// ListActive returns the user's active goals newest-first, capped at limit.
func (s *GoalStore) ListActive(userID int64, limit int) ([]model.Goal, error) {
	rows, err := s.db.Query(
		`SELECT `+goalCols+` FROM goals WHERE user_id = ? AND status = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, model.GoalStatusActive, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

func collectGoals(rows *sql.Rows) ([]model.Goal, error) {
	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(id, userID int64, title, description, category, priority string, targetDate *time.Time) (*model.Goal, error) {
	_, err := s.db.Exec(
		`UPDATE goals SET title = ?, description = ?, category = ?, priority = ?, target_date = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		title, description, category, priority, targetDate, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.GetByID(id, userID)
}

// UpdateProgress clamps progress to 0-100 and flips status to completed at
// 100, back to active below it.
func (s *GoalStore) UpdateProgress(id, userID int64, progress int) (*model.Goal, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	status := model.GoalStatusActive
	if progress == 100 {
		status = model.GoalStatusCompleted
	}

	_, err := s.db.Exec(
		`UPDATE goals SET progress = ?, status = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		progress, status, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal progress: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *GoalStore) CountByStatus(userID int64, status string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM goals WHERE user_id = ? AND status = ?`, userID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count goals by status: %w", err)
	}
	return count, nil
}

// AverageProgress returns the mean progress across all of the user's goals,
// zero when there are none.
func (s *GoalStore) AverageProgress(userID int64) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRow(`SELECT AVG(progress) FROM goals WHERE user_id = ?`, userID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average goal progress: %w", err)
	}
	return avg.Float64, nil
}

func (s *GoalStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
