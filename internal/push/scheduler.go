package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rdouglass/larder/internal/model"
	"github.com/rdouglass/larder/internal/store"
)

// Scheduler sends the daily dinner reminder. It ticks once a minute and
// fires when the local time matches the configured reminder time, at most
// once per calendar day.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	planner  *store.PlannerStore
	recipes  *store.RecipeStore
	settings *store.SettingsStore
	logger   *slog.Logger
	interval time.Duration

	lastSentDate string

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(svc *Service, ps *store.PushStore, pls *store.PlannerStore, rs *store.RecipeStore, ss *store.SettingsStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     ps,
		planner:  pls,
		recipes:  rs,
		settings: ss,
		logger:   logger,
		interval: 60 * time.Second,
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
	settings, err := s.settings.GetReminderSettings()
	if err != nil {
		s.logger.Error("failed to read reminder settings", "error", err)
		return
	}
	if settings["reminder_enabled"] != "true" {
		return
	}
	if now.Format("15:04") != settings["reminder_time"] {
		return
	}

	today := now.Format("2006-01-02")
	s.mu.RLock()
	alreadySent := s.lastSentDate == today
	s.mu.RUnlock()
	if alreadySent {
		return
	}

	entry, err := s.planner.GetByDate(today)
	if err != nil {
		s.logger.Error("failed to load today's plan", "error", err)
		return
	}
	if entry == nil {
		// Nothing planned; do not retry for the rest of the day.
		s.markSent(today)
		return
	}

	body := "Dinner is planned for tonight"
	if recipe, err := s.recipes.GetByID(entry.RecipeID); err == nil && recipe != nil {
		body = fmt.Sprintf("Tonight's dinner: %s", recipe.Title)
	}

	s.sendToAll(Payload{
		Title: "Dinner Reminder",
		Body:  body,
		URL:   "/planner",
		Tag:   model.NotifTypeDinnerReminder,
	})
	s.markSent(today)
}

func (s *Scheduler) markSent(date string) {
	s.mu.Lock()
	s.lastSentDate = date
	s.mu.Unlock()
}

// SendGroceryGenerated notifies every subscription that a week's shopping
// list was regenerated. Called from the grocery handler, not the ticker.
func (s *Scheduler) SendGroceryGenerated(weekID string, itemCount int) {
	s.sendToAll(Payload{
		Title: "Grocery List Ready",
		Body:  fmt.Sprintf("Your list for the week of %s has %d items", weekID, itemCount),
		URL:   "/grocery",
		Tag:   model.NotifTypeGroceryReminder,
	})
}

func (s *Scheduler) sendToAll(payload Payload) {
	subs, err := s.push.List()
	if err != nil {
		s.logger.Error("failed to list push subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				// Expired endpoints are pruned rather than retried.
				if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					s.logger.Error("failed to prune expired subscription", "error", err)
				}
				continue
			}
			s.logger.Error("failed to send push notification", "error", err, "endpoint", sub.Endpoint)
		}
	}
}
