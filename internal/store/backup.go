package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/flourish/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	err := scanner.Scan(&b.ID, &b.Filename, &b.S3Key, &b.Status, &b.SizeBytes, &b.Error, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const backupCols = `id, filename, s3_key, status, size_bytes, error, created_at`

func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, s3_key) VALUES (?, ?)`,
		filename, s3Key,
	)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(`UPDATE backups SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set backup status: %w", err)
	}
	return nil
}

func (s *BackupStore) MarkCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ? WHERE id = ?`,
		model.BackupStatusCompleted, sizeBytes, id,
	)
	if err != nil {
		return fmt.Errorf("mark backup completed: %w", err)
	}
	return nil
}

func (s *BackupStore) MarkFailed(id int64, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error = ? WHERE id = ?`,
		model.BackupStatusFailed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("mark backup failed: %w", err)
	}
	return nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()
	return collectBackups(rows)
}

// ListCompleted returns completed backups newest-first, for retention
// pruning.
func (s *BackupStore) ListCompleted() ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY created_at DESC, id DESC`,
		model.BackupStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed backups: %w", err)
	}
	defer rows.Close()
	return collectBackups(rows)
}

func collectBackups(rows *sql.Rows) ([]model.Backup, error) {
	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}
