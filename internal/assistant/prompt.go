package assistant

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/flourish/internal/model"
)

const basePrompt = "You are a warm, encouraging personal wellness assistant. " +
	"Keep replies short, supportive, and practical. " +
	"Use the context below about the user when it is relevant, but do not recite it back."

const (
	promptMoodLimit    = 3
	promptGoalLimit    = 3
	promptJournalLimit = 2
	promptHabitLimit   = 3
)

// buildSystemPrompt fans out the context reads and folds the results into
// the system prompt. A failed read drops that section; the prompt degrades
// instead of the chat failing.
func (s *Service) buildSystemPrompt(ctx context.Context, userID int64) string {
	var (
		user    *model.User
		moods   []model.Mood
		goals   []model.Goal
		entries []model.JournalEntry
		habits  []model.Habit
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.GetByID(userID)
		if err != nil {
			s.logger.Warn("prompt context: user", "error", err)
			return nil
		}
		user = u
		return nil
	})
	g.Go(func() error {
		m, err := s.moods.List(userID, promptMoodLimit)
		if err != nil {
			s.logger.Warn("prompt context: moods", "error", err)
			return nil
		}
		moods = m
		return nil
	})
	g.Go(func() error {
		gl, err := s.goals.ListActive(userID, promptGoalLimit)
		if err != nil {
			s.logger.Warn("prompt context: goals", "error", err)
			return nil
		}
		goals = gl
		return nil
	})
	g.Go(func() error {
		e, err := s.journal.List(userID, promptJournalLimit)
		if err != nil {
			s.logger.Warn("prompt context: journal", "error", err)
			return nil
		}
		entries = e
		return nil
	})
	g.Go(func() error {
		h, err := s.habits.ListActive(userID, promptHabitLimit)
		if err != nil {
			s.logger.Warn("prompt context: habits", "error", err)
			return nil
		}
		habits = h
		return nil
	})
	g.Wait()

	var b strings.Builder
	b.WriteString(basePrompt)

	if user != nil && user.Name != "" {
		fmt.Fprintf(&b, "\n\nThe user's name is %s.", user.Name)
	}
	if len(moods) > 0 {
		parts := make([]string, 0, len(moods))
		for _, m := range moods {
			parts = append(parts, fmt.Sprintf("%s (intensity %d/10)", m.Mood, m.Intensity))
		}
		fmt.Fprintf(&b, "\nRecent moods: %s.", strings.Join(parts, ", "))
	}
	if len(goals) > 0 {
		parts := make([]string, 0, len(goals))
		for _, gl := range goals {
			parts = append(parts, fmt.Sprintf("%s (%d%% complete)", gl.Title, gl.Progress))
		}
		fmt.Fprintf(&b, "\nActive goals: %s.", strings.Join(parts, ", "))
	}
	if len(entries) > 0 {
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, fmt.Sprintf("%q (%s)", e.Title, e.Sentiment))
		}
		fmt.Fprintf(&b, "\nRecent journal entries: %s.", strings.Join(parts, ", "))
	}
	if len(habits) > 0 {
		parts := make([]string, 0, len(habits))
		for _, h := range habits {
			parts = append(parts, fmt.Sprintf("%s (%d day streak)", h.Name, h.CurrentStreak))
		}
		fmt.Fprintf(&b, "\nHabits being tracked: %s.", strings.Join(parts, ", "))
	}

	return b.String()
}
