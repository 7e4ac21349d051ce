package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/flourish/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

func scanPushSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

const pushCols = `id, user_id, endpoint, p256dh_key, auth_key, created_at`

// Upsert registers a browser subscription. Re-registering an endpoint
// rebinds it to the given user with fresh keys.
func (s *PushStore) Upsert(userID int64, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh_key, auth_key) VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_id = excluded.user_id, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		userID, endpoint, p256dh, auth,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+pushCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return scanPushSubscription(row)
}

func (s *PushStore) ListByUser(userID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT `+pushCols+` FROM push_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()
	return collectPushSubscriptions(rows)
}

// ListAll returns every subscription. The reminder scheduler walks this to
// find users to notify.
func (s *PushStore) ListAll() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT ` + pushCols + ` FROM push_subscriptions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list all push subscriptions: %w", err)
	}
	defer rows.Close()
	return collectPushSubscriptions(rows)
}

func collectPushSubscriptions(rows *sql.Rows) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanPushSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// MarkSent records a delivered notification and reports whether this was
// the first send for the (user, type, ref) triple.
func (s *PushStore) MarkSent(userID int64, notifType, refID string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO push_sent (user_id, notif_type, ref_id) VALUES (?, ?, ?)`,
		userID, notifType, refID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification sent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
