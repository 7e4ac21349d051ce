package store

import (
	"testing"

	"github.com/dukerupert/flourish/internal/database"
	"github.com/dukerupert/flourish/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewPushStore(db), u.ID
}

func TestPushUpsert(t *testing.T) {
	ps, userID := setupPushTestDB(t)

	sub, err := ps.Upsert(userID, "https://push.example/ep1", "p256dh-key", "auth-key")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
	if sub.Endpoint != "https://push.example/ep1" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}
	if sub.P256dhKey != "p256dh-key" {
		t.Errorf("p256dh = %q", sub.P256dhKey)
	}
}

func TestPushUpsertSameEndpointRebinds(t *testing.T) {
	ps, userID := setupPushTestDB(t)

	if _, err := ps.Upsert(userID, "https://push.example/ep1", "old", "old"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	sub, err := ps.Upsert(userID, "https://push.example/ep1", "new", "new")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if sub.P256dhKey != "new" {
		t.Errorf("p256dh = %q, want refreshed %q", sub.P256dhKey, "new")
	}

	subs, err := ps.ListByUser(userID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("len = %d, want 1 row per endpoint", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, userID := setupPushTestDB(t)

	if _, err := ps.Upsert(userID, "https://push.example/ep1", "k", "a"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ps.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, err := ps.ListByUser(userID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("len = %d, want 0", len(subs))
	}
}

func TestPushMarkSentDedupes(t *testing.T) {
	ps, userID := setupPushTestDB(t)

	first, err := ps.MarkSent(userID, model.NotifTypeHabitReminder, "2026-08-31")
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if !first {
		t.Error("first send should report true")
	}

	second, err := ps.MarkSent(userID, model.NotifTypeHabitReminder, "2026-08-31")
	if err != nil {
		t.Fatalf("mark sent again: %v", err)
	}
	if second {
		t.Error("duplicate send should report false")
	}

	nextDay, err := ps.MarkSent(userID, model.NotifTypeHabitReminder, "2026-09-01")
	if err != nil {
		t.Fatalf("mark sent next day: %v", err)
	}
	if !nextDay {
		t.Error("different ref should report true")
	}
}
