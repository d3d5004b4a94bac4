package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/shelfsense/internal/store"
)

// Sender delivers a composed notification. Satisfied by *email.Client.
type Sender interface {
	Send(toEmail, subject, textBody, htmlBody string) error
}

// Scheduler periodically sweeps every notifiable user's pantry.
type Scheduler struct {
	mu       sync.RWMutex
	pantry   *store.PantryStore
	users    *store.UserStore
	sender   Sender
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *slog.Logger
}

// NewScheduler creates an expiration sweep scheduler. interval defaults to
// once daily when non-positive.
func NewScheduler(pantryStore *store.PantryStore, userStore *store.UserStore, sender Sender, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		pantry:   pantryStore,
		users:    userStore,
		sender:   sender,
		interval: interval,
		logger:   logger,
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
				s.RunOnce(ctx, time.Now())
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

// RunOnce sweeps every notifiable user against the given reference time.
// A failure for one user is logged and does not abort the run: fault
// isolation across users keeps one broken pantry from silencing the rest.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	users, err := s.users.ListNotifiable(ctx)
	if err != nil {
		s.logger.Error("sweep: list users", "error", err)
		return
	}

	for _, user := range users {
		pantry, err := s.pantry.ListPantry(ctx, user.ID)
		if err != nil {
			s.logger.Error("sweep: list pantry", "user_id", user.ID, "error", err)
			continue
		}

		payload := BuildPayload(user, pantry, now)
		if payload == nil {
			continue
		}

		if err := s.sender.Send(payload.RecipientAddress, payload.SubjectLine, payload.BodyText, payload.BodyHTML); err != nil {
			s.logger.Error("sweep: send notification", "user_id", user.ID, "error", err)
			continue
		}
		s.logger.Info("sweep: notification sent", "user_id", user.ID)
	}
}
