package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/flourish/internal/model"
	"github.com/dukerupert/flourish/internal/store"
)

// Scheduler sends one habit reminder digest per user per day, listing the
// active habits still unfinished at the reminder hour.
type Scheduler struct {
	mu           sync.RWMutex
	service      *Service
	push         *store.PushStore
	habits       *store.HabitStore
	reminderHour int
	interval     time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewScheduler creates a habit reminder scheduler. reminderHour is the
// local hour (0-23) at which digests go out.
func NewScheduler(svc *Service, pushStore *store.PushStore, habitStore *store.HabitStore, reminderHour int) *Scheduler {
	return &Scheduler{
		service:      svc,
		push:         pushStore,
		habits:       habitStore,
		reminderHour: reminderHour,
		interval:     60 * time.Second,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	if now.Hour() != s.reminderHour {
		return
	}

	subs, err := s.push.ListAll()
	if err != nil {
		slog.Error("list push subscriptions", "error", err)
		return
	}

	byUser := make(map[int64][]model.PushSubscription)
	for _, sub := range subs {
		byUser[sub.UserID] = append(byUser[sub.UserID], sub)
	}

	today := now.Format("2006-01-02")
	for userID, userSubs := range byUser {
		s.sendHabitDigest(userID, userSubs, today)
	}
}

func (s *Scheduler) sendHabitDigest(userID int64, subs []model.PushSubscription, today string) {
	pending, err := s.habits.ActiveNotCompletedOn(userID, today)
	if err != nil {
		slog.Error("list pending habits", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	// One digest per user per day, across restarts.
	first, err := s.push.MarkSent(userID, model.NotifTypeHabitReminder, today)
	if err != nil {
		slog.Error("record reminder digest", "error", err)
		return
	}
	if !first {
		return
	}

	body := fmt.Sprintf("You have %d habits left to complete today", len(pending))
	if len(pending) == 1 {
		body = fmt.Sprintf("Don't forget: %s", pending[0].Name)
	}

	payload := Payload{
		Title: "Habit Reminder",
		Body:  body,
		URL:   "/habits",
		Tag:   "habit-daily",
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				slog.Error("send habit reminder", "error", err)
			}
		}
	}
}
