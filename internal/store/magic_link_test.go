package store

import (
	"testing"

	"github.com/dukerupert/flourish/internal/database"
)

func setupMagicLinkTestDB(t *testing.T) *MagicLinkStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMagicLinkStore(db)
}

func TestMagicLinkCreate(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, err := ms.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create magic link: %v", err)
	}
	if len(ml.Token) != 6 {
		t.Errorf("token length = %d, want 6", len(ml.Token))
	}
	for _, c := range ml.Token {
		if c < '0' || c > '9' {
			t.Errorf("token %q contains non-digit", ml.Token)
			break
		}
	}
	if ml.Purpose != "login" {
		t.Errorf("purpose = %q, want %q", ml.Purpose, "login")
	}
	if ml.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", ml.Attempts)
	}
}

func TestMagicLinkCreateInvalidatesPrevious(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	first, err := ms.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := ms.Create("alice@example.com", "login")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	latest, err := ms.GetLatestByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a valid code")
	}
	if latest.ID != second.ID {
		t.Errorf("latest ID = %d, want %d", latest.ID, second.ID)
	}
	if latest.ID == first.ID {
		t.Error("first code should have been invalidated")
	}
}

func TestMagicLinkGetLatestByEmailNone(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, err := ms.GetLatestByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if ml != nil {
		t.Error("expected nil when no codes exist")
	}
}

func TestMagicLinkIncrementAttempts(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, _ := ms.Create("alice@example.com", "login")

	for want := 1; want <= 3; want++ {
		got, err := ms.IncrementAttempts(ml.ID)
		if err != nil {
			t.Fatalf("increment attempts: %v", err)
		}
		if got != want {
			t.Errorf("attempts = %d, want %d", got, want)
		}
	}
}

func TestMagicLinkMarkUsed(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, _ := ms.Create("alice@example.com", "login")

	if err := ms.MarkUsed(ml.ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	latest, err := ms.GetLatestByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest != nil {
		t.Error("used code should not be returned")
	}
}

func TestMagicLinkDeleteExpired(t *testing.T) {
	ms := setupMagicLinkTestDB(t)

	ml, _ := ms.Create("alice@example.com", "login")
	_, err := ms.db.Exec(`UPDATE magic_links SET expires_at = datetime('now', '-1 minute') WHERE id = ?`, ml.ID)
	if err != nil {
		t.Fatalf("expire code: %v", err)
	}

	count, err := ms.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
}
