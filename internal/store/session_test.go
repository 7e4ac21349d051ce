package store

import (
	"testing"
	"time"

	"github.com/dukerupert/flourish/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db)
}

func TestSessionCreate(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, u.ID)
	}
	if !sess.ExpiresAt.After(time.Now().Add(89 * 24 * time.Hour)) {
		t.Errorf("expires_at = %v, want ~90 days out", sess.ExpiresAt)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, u.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionGetByTokenExpired(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err = ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, created.ID)
	if err != nil {
		t.Fatalf("expire session: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, _ := ss.Create(u.ID)

	if err := ss.Delete(created.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteByUserID(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	s1, _ := ss.Create(u.ID)
	s2, _ := ss.Create(u.ID)

	if err := ss.DeleteByUserID(u.ID); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	for _, token := range []string{s1.Token, s2.Token} {
		sess, err := ss.GetByToken(token)
		if err != nil {
			t.Fatalf("get by token: %v", err)
		}
		if sess != nil {
			t.Error("expected all user sessions deleted")
		}
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	stale, _ := ss.Create(u.ID)
	fresh, _ := ss.Create(u.ID)

	_, err := ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, stale.ID)
	if err != nil {
		t.Fatalf("expire session: %v", err)
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}

	sess, err := ss.GetByToken(fresh.Token)
	if err != nil {
		t.Fatalf("get fresh session: %v", err)
	}
	if sess == nil {
		t.Error("fresh session should survive cleanup")
	}
}
