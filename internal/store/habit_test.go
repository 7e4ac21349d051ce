package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/flourish/internal/database"
)

func setupHabitTestDB(t *testing.T) (*HabitStore, int64) {
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
	return NewHabitStore(db), u.ID
}

func TestHabitCreate(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, err := hs.Create(userID, "Meditate", "10 minutes", "wellness", "Daily")
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if h.Name != "Meditate" {
		t.Errorf("name = %q, want %q", h.Name, "Meditate")
	}
	if h.CurrentStreak != 0 || h.BestStreak != 0 || h.TotalCompletions != 0 {
		t.Errorf("counters = %d/%d/%d, want 0/0/0", h.CurrentStreak, h.BestStreak, h.TotalCompletions)
	}
	if !h.IsActive {
		t.Error("new habit should be active")
	}
}

func TestHabitCompleteFirstTime(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")

	updated, err := hs.Complete(h.ID, userID, 5, "felt good", time.Now())
	if err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	if updated.CurrentStreak != 1 {
		t.Errorf("current_streak = %d, want 1", updated.CurrentStreak)
	}
	if updated.BestStreak != 1 {
		t.Errorf("best_streak = %d, want 1", updated.BestStreak)
	}
	if updated.TotalCompletions != 1 {
		t.Errorf("total_completions = %d, want 1", updated.TotalCompletions)
	}
}

func TestHabitCompleteSameDayRejected(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")
	now := time.Now()

	if _, err := hs.Complete(h.ID, userID, 5, "", now); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	got, err := hs.Complete(h.ID, userID, 5, "", now)
	if !errors.Is(err, ErrAlreadyCompletedToday) {
		t.Fatalf("err = %v, want ErrAlreadyCompletedToday", err)
	}
	if got == nil {
		t.Fatal("expected unchanged habit alongside the error")
	}
	if got.TotalCompletions != 1 {
		t.Errorf("total_completions = %d, want unchanged 1", got.TotalCompletions)
	}
}

func TestHabitCompleteExtendsStreak(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")
	now := time.Now()

	if _, err := hs.Complete(h.ID, userID, 5, "", now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("yesterday completion: %v", err)
	}

	updated, err := hs.Complete(h.ID, userID, 5, "", now)
	if err != nil {
		t.Fatalf("today completion: %v", err)
	}
	if updated.CurrentStreak != 2 {
		t.Errorf("current_streak = %d, want 2", updated.CurrentStreak)
	}
	if updated.BestStreak != 2 {
		t.Errorf("best_streak = %d, want 2", updated.BestStreak)
	}
}

func TestHabitCompleteGapResetsStreak(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")
	now := time.Now()

	if _, err := hs.Complete(h.ID, userID, 5, "", now.AddDate(0, 0, -3)); err != nil {
		t.Fatalf("old completion: %v", err)
	}

	updated, err := hs.Complete(h.ID, userID, 5, "", now)
	if err != nil {
		t.Fatalf("today completion: %v", err)
	}
	if updated.CurrentStreak != 1 {
		t.Errorf("current_streak = %d, want reset to 1", updated.CurrentStreak)
	}
	if updated.BestStreak != 1 {
		t.Errorf("best_streak = %d, want 1", updated.BestStreak)
	}
	if updated.TotalCompletions != 2 {
		t.Errorf("total_completions = %d, want 2", updated.TotalCompletions)
	}
}

func TestHabitCompleteNotFound(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	got, err := hs.Complete(999, userID, 5, "", time.Now())
	if err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent habit")
	}
}

func TestHabitListCompletions(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")
	now := time.Now()
	if _, err := hs.Complete(h.ID, userID, 4, "ok", now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	if _, err := hs.Complete(h.ID, userID, 5, "great", now); err != nil {
		t.Fatalf("complete habit: %v", err)
	}

	completions, err := hs.ListCompletions(h.ID, userID, 10)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(completions) != 2 {
		t.Fatalf("len = %d, want 2", len(completions))
	}
	if completions[0].CompletedOn != now.Format("2006-01-02") {
		t.Errorf("first completed_on = %q, want today", completions[0].CompletedOn)
	}
	if completions[0].Notes != "great" {
		t.Errorf("notes = %q, want %q", completions[0].Notes, "great")
	}
}

func TestHabitActiveNotCompletedOn(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	done, _ := hs.Create(userID, "Done today", "", "", "Daily")
	pending, _ := hs.Create(userID, "Still pending", "", "", "Daily")
	inactive, _ := hs.Create(userID, "Paused", "", "", "Daily")
	if _, err := hs.Update(inactive.ID, userID, "Paused", "", "", "Daily", false); err != nil {
		t.Fatalf("deactivate habit: %v", err)
	}

	now := time.Now()
	if _, err := hs.Complete(done.ID, userID, 5, "", now); err != nil {
		t.Fatalf("complete habit: %v", err)
	}

	habits, err := hs.ActiveNotCompletedOn(userID, now.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("list not completed: %v", err)
	}
	if len(habits) != 1 {
		t.Fatalf("len = %d, want 1", len(habits))
	}
	if habits[0].ID != pending.ID {
		t.Errorf("habit ID = %d, want %d", habits[0].ID, pending.ID)
	}
}

func TestHabitAggregates(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h1, _ := hs.Create(userID, "One", "", "", "Daily")
	h2, _ := hs.Create(userID, "Two", "", "", "Daily")
	now := time.Now()

	if _, err := hs.Complete(h1.ID, userID, 5, "", now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	if _, err := hs.Complete(h1.ID, userID, 5, "", now); err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	if _, err := hs.Complete(h2.ID, userID, 5, "", now); err != nil {
		t.Fatalf("complete habit: %v", err)
	}

	active, err := hs.CountActive(userID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 2 {
		t.Errorf("active = %d, want 2", active)
	}

	top, err := hs.TopStreak(userID)
	if err != nil {
		t.Fatalf("top streak: %v", err)
	}
	if top != 2 {
		t.Errorf("top streak = %d, want 2", top)
	}

	total, err := hs.TotalCompletions(userID)
	if err != nil {
		t.Fatalf("total completions: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestHabitDeleteCascadesCompletions(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, _ := hs.Create(userID, "Meditate", "", "", "Daily")
	if _, err := hs.Complete(h.ID, userID, 5, "", time.Now()); err != nil {
		t.Fatalf("complete habit: %v", err)
	}

	if err := hs.Delete(h.ID, userID); err != nil {
		t.Fatalf("delete habit: %v", err)
	}

	var count int
	err := hs.db.QueryRow(`SELECT COUNT(*) FROM habit_completions WHERE habit_id = ?`, h.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if count != 0 {
		t.Errorf("completions = %d, want 0 after cascade", count)
	}
}

func TestHabitSuccessRateDerived(t *testing.T) {
	hs, userID := setupHabitTestDB(t)

	h, err := hs.Create(userID, "Meditate", "", "", "Daily")
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if h.SuccessRate != 0 {
		t.Errorf("success_rate = %d, want 0 before any completion", h.SuccessRate)
	}

	if _, err := hs.Complete(h.ID, userID, 5, "", time.Now()); err != nil {
		t.Fatalf("complete habit: %v", err)
	}

	// One completion on the habit's first day: 1/1 = 100%.
	got, err := hs.GetByID(h.ID, userID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if got.SuccessRate != 100 {
		t.Errorf("success_rate = %d, want 100", got.SuccessRate)
	}
}
