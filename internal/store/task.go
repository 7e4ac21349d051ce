package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/flourish/internal/insight"
	"github.com/dukerupert/flourish/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var dueDate, completedAt sql.NullTime
	var estimated, actual sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &dueDate,
		&t.Category, &t.Status, &estimated, &actual, &completedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t.DueDate = &dueDate.Time
		days := insight.DaysUntil(dueDate.Time, time.Now())
		t.DaysUntilDue = &days
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if estimated.Valid {
		v := int(estimated.Int64)
		t.EstimatedDuration = &v
	}
	if actual.Valid {
		v := int(actual.Int64)
		t.ActualDuration = &v
	}
	return &t, nil
}

const taskCols = `id, user_id, title, description, priority, due_date, category, status, estimated_duration, actual_duration, completed_at, created_at, updated_at`

func (s *TaskStore) Create(userID int64, title, description, priority string, dueDate *time.Time, category string, estimatedDuration *int) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (user_id, title, description, priority, due_date, category, estimated_duration) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, title, description, priority, dueDate, category, estimatedDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *TaskStore) GetByID(id, userID int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(userID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id, userID int64, title, description, priority string, dueDate *time.Time, category string, estimatedDuration, actualDuration *int) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, priority = ?, due_date = ?, category = ?, estimated_duration = ?, actual_duration = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		title, description, priority, dueDate, category, estimatedDuration, actualDuration, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id, userID)
}

// SetStatus moves a task between states. Entering completed stamps
// completed_at; leaving it clears the stamp.
func (s *TaskStore) SetStatus(id, userID int64, status string) (*model.Task, error) {
	var err error
	if status == model.TaskStatusCompleted {
		_, err = s.db.Exec(
			`UPDATE tasks SET status = ?, completed_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
			status, id, userID,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE tasks SET status = ?, completed_at = NULL, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
			status, id, userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *TaskStore) CountByStatus(userID int64, status string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?`, userID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks by status: %w", err)
	}
	return count, nil
}

func (s *TaskStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
