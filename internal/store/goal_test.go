package store

import (
	"testing"
	"time"

	"github.com/dukerupert/flourish/internal/database"
	"github.com/dukerupert/flourish/internal/model"
)

func setupGoalTestDB(t *testing.T) (*GoalStore, int64) {
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
	return NewGoalStore(db), u.ID
}

func TestGoalCreate(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	target := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	g, err := gs.Create(userID, "Run a marathon", "26.2 miles", "fitness", "high", &target)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.Title != "Run a marathon" {
		t.Errorf("title = %q, want %q", g.Title, "Run a marathon")
	}
	if g.Status != model.GoalStatusActive {
		t.Errorf("status = %q, want %q", g.Status, model.GoalStatusActive)
	}
	if g.Progress != 0 {
		t.Errorf("progress = %d, want 0", g.Progress)
	}
	if g.TargetDate == nil {
		t.Error("expected target date")
	}
}

func TestGoalCreateNoTargetDate(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g, err := gs.Create(userID, "Read more", "", "learning", "low", nil)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.TargetDate != nil {
		t.Errorf("target_date = %v, want nil", g.TargetDate)
	}
}

func TestGoalUpdateProgressCompletes(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g, _ := gs.Create(userID, "Goal", "", "", "medium", nil)

	updated, err := gs.UpdateProgress(g.ID, userID, 100)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Progress != 100 {
		t.Errorf("progress = %d, want 100", updated.Progress)
	}
	if updated.Status != model.GoalStatusCompleted {
		t.Errorf("status = %q, want %q", updated.Status, model.GoalStatusCompleted)
	}
}

func TestGoalUpdateProgressReactivates(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g, _ := gs.Create(userID, "Goal", "", "", "medium", nil)
	if _, err := gs.UpdateProgress(g.ID, userID, 100); err != nil {
		t.Fatalf("complete goal: %v", err)
	}

	updated, err := gs.UpdateProgress(g.ID, userID, 60)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Status != model.GoalStatusActive {
		t.Errorf("status = %q, want %q", updated.Status, model.GoalStatusActive)
	}
}

func TestGoalUpdateProgressClamps(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g, _ := gs.Create(userID, "Goal", "", "", "medium", nil)

	over, err := gs.UpdateProgress(g.ID, userID, 150)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if over.Progress != 100 {
		t.Errorf("progress = %d, want clamped 100", over.Progress)
	}

	under, err := gs.UpdateProgress(g.ID, userID, -10)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if under.Progress != 0 {
		t.Errorf("progress = %d, want clamped 0", under.Progress)
	}
}

func TestGoalListActive(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	a, _ := gs.Create(userID, "Active", "", "", "medium", nil)
	done, _ := gs.Create(userID, "Done", "", "", "medium", nil)
	if _, err := gs.UpdateProgress(done.ID, userID, 100); err != nil {
		t.Fatalf("complete goal: %v", err)
	}

	goals, err := gs.ListActive(userID, 10)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("len = %d, want 1", len(goals))
	}
	if goals[0].ID != a.ID {
		t.Errorf("goal ID = %d, want %d", goals[0].ID, a.ID)
	}
}

func TestGoalAverageProgress(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g1, _ := gs.Create(userID, "One", "", "", "medium", nil)
	g2, _ := gs.Create(userID, "Two", "", "", "medium", nil)
	if _, err := gs.UpdateProgress(g1.ID, userID, 40); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if _, err := gs.UpdateProgress(g2.ID, userID, 60); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	avg, err := gs.AverageProgress(userID)
	if err != nil {
		t.Fatalf("average progress: %v", err)
	}
	if avg != 50 {
		t.Errorf("avg = %v, want 50", avg)
	}
}

func TestGoalAverageProgressEmpty(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	avg, err := gs.AverageProgress(userID)
	if err != nil {
		t.Fatalf("average progress: %v", err)
	}
	if avg != 0 {
		t.Errorf("avg = %v, want 0 with no goals", avg)
	}
}

func TestGoalCountByStatus(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	if _, err := gs.Create(userID, "One", "", "", "medium", nil); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	done, _ := gs.Create(userID, "Two", "", "", "medium", nil)
	if _, err := gs.UpdateProgress(done.ID, userID, 100); err != nil {
		t.Fatalf("complete goal: %v", err)
	}

	active, err := gs.CountByStatus(userID, model.GoalStatusActive)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 1 {
		t.Errorf("active = %d, want 1", active)
	}
	completed, err := gs.CountByStatus(userID, model.GoalStatusCompleted)
	if err != nil {
		t.Fatalf("count completed: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
}

func TestGoalDelete(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	g, _ := gs.Create(userID, "Gone", "", "", "medium", nil)
	if err := gs.Delete(g.ID, userID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}

	got, err := gs.GetByID(g.ID, userID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestGoalDaysUntilTargetDerived(t *testing.T) {
	gs, userID := setupGoalTestDB(t)

	target := time.Now().UTC().AddDate(0, 0, 10)
	g, err := gs.Create(userID, "Run a 10k", "", "fitness", "high", &target)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.DaysUntilTarget == nil {
		t.Fatal("expected days_until_target for a goal with a target date")
	}
	if *g.DaysUntilTarget != 10 {
		t.Errorf("days_until_target = %d, want 10", *g.DaysUntilTarget)
	}

	open, err := gs.Create(userID, "Read more", "", "", "medium", nil)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if open.DaysUntilTarget != nil {
		t.Errorf("days_until_target = %d, want nil without a target date", *open.DaysUntilTarget)
	}
}
