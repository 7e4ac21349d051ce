package dashboard

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/flourish/internal/model"
	"github.com/dukerupert/flourish/internal/store"
)

// Summary is the aggregate view across a user's records. Every field
// defaults to zero when its source query fails; a partial dashboard beats
// no dashboard.
type Summary struct {
	MoodCount        int     `json:"mood_count"`
	JournalCount     int     `json:"journal_count"`
	GoalsActive      int     `json:"goals_active"`
	GoalsCompleted   int     `json:"goals_completed"`
	GoalAvgProgress  float64 `json:"goal_avg_progress"`
	HabitsActive     int     `json:"habits_active"`
	TopStreak        int     `json:"top_streak"`
	TotalCompletions int     `json:"total_completions"`
	TasksPending     int     `json:"tasks_pending"`
	TasksInProgress  int     `json:"tasks_in_progress"`
	TasksCompleted   int     `json:"tasks_completed"`
}

type Service struct {
	moods   *store.MoodStore
	journal *store.JournalStore
	goals   *store.GoalStore
	habits  *store.HabitStore
	tasks   *store.TaskStore
	logger  *slog.Logger
}

func NewService(moods *store.MoodStore, journal *store.JournalStore, goals *store.GoalStore, habits *store.HabitStore, tasks *store.TaskStore, logger *slog.Logger) *Service {
	return &Service{
		moods:   moods,
		journal: journal,
		goals:   goals,
		habits:  habits,
		tasks:   tasks,
		logger:  logger,
	}
}

// Summarize fans the aggregate queries out concurrently and collects the
// results. Individual failures are logged and leave their field at zero.
func (s *Service) Summarize(ctx context.Context, userID int64) Summary {
	var sum Summary

	count := func(dst *int, label string, fn func() (int, error)) func() error {
		return func() error {
			n, err := fn()
			if err != nil {
				s.logger.Warn("dashboard query failed", "query", label, "error", err)
				return nil
			}
			*dst = n
			return nil
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(count(&sum.MoodCount, "mood_count", func() (int, error) { return s.moods.Count(userID) }))
	g.Go(count(&sum.JournalCount, "journal_count", func() (int, error) { return s.journal.Count(userID) }))
	g.Go(count(&sum.GoalsActive, "goals_active", func() (int, error) {
		return s.goals.CountByStatus(userID, model.GoalStatusActive)
	}))
	g.Go(count(&sum.GoalsCompleted, "goals_completed", func() (int, error) {
		return s.goals.CountByStatus(userID, model.GoalStatusCompleted)
	}))
	g.Go(func() error {
		avg, err := s.goals.AverageProgress(userID)
		if err != nil {
			s.logger.Warn("dashboard query failed", "query", "goal_avg_progress", "error", err)
			return nil
		}
		sum.GoalAvgProgress = math.Round(avg*10) / 10
		return nil
	})
	g.Go(count(&sum.HabitsActive, "habits_active", func() (int, error) { return s.habits.CountActive(userID) }))
	g.Go(count(&sum.TopStreak, "top_streak", func() (int, error) { return s.habits.TopStreak(userID) }))
	g.Go(count(&sum.TotalCompletions, "total_completions", func() (int, error) { return s.habits.TotalCompletions(userID) }))
	g.Go(count(&sum.TasksPending, "tasks_pending", func() (int, error) {
		return s.tasks.CountByStatus(userID, model.TaskStatusPending)
	}))
	g.Go(count(&sum.TasksInProgress, "tasks_in_progress", func() (int, error) {
		return s.tasks.CountByStatus(userID, model.TaskStatusInProgress)
	}))
	g.Go(count(&sum.TasksCompleted, "tasks_completed", func() (int, error) {
		return s.tasks.CountByStatus(userID, model.TaskStatusCompleted)
	}))
	g.Wait()

	return sum
}
