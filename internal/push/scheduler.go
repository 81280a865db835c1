package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rfountain/steward/internal/model"
	"github.com/rfountain/steward/internal/store"
)

// Scheduler periodically sweeps maintenance schedules and notifies
// subscribed users about work that has come due.
type Scheduler struct {
	mu          sync.RWMutex
	service     *Service
	push        *store.PushStore
	maintenance *store.MaintenanceStore
	logger      *slog.Logger
	interval    time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewScheduler creates a maintenance reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, maintenanceStore *store.MaintenanceStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:     svc,
		push:        pushStore,
		maintenance: maintenanceStore,
		logger:      logger,
		interval:    time.Hour,
	}
}

// Start begins the scheduler loop. It runs an immediate sweep, then
// ticks. No-op when the push service has no VAPID keys.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.service.Enabled() {
		s.logger.Info("push reminders disabled, no VAPID keys")
		return
	}

	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
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

func (s *Scheduler) tick() {
	userIDs, err := s.push.ListUserIDs()
	if err != nil {
		s.logger.Error("scheduler: list subscribed users", "error", err)
		return
	}

	for _, uid := range userIDs {
		s.checkMaintenanceDue(uid)
	}
}

func (s *Scheduler) checkMaintenanceDue(userID int64) {
	endOfToday := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	due, err := s.maintenance.ListDue(userID, endOfToday)
	if err != nil {
		s.logger.Error("scheduler: list due maintenance", "error", err, "user_id", userID)
		return
	}

	for _, m := range due {
		// Ref includes the due date so the next occurrence of a
		// recurring schedule notifies again.
		refID := fmt.Sprintf("%d", m.ID)
		if m.NextDue != nil {
			refID = fmt.Sprintf("%d-%s", m.ID, m.NextDue.Format("2006-01-02"))
		}

		sent, err := s.push.WasSent(userID, model.NotifTypeMaintenanceDue, refID)
		if err != nil {
			s.logger.Error("scheduler: check sent", "error", err)
			continue
		}
		if sent {
			continue
		}

		subs, err := s.push.ListForUser(userID)
		if err != nil {
			s.logger.Error("scheduler: list subscriptions", "error", err)
			continue
		}

		payload := Payload{
			Title: "Maintenance due",
			Body:  fmt.Sprintf("%s: %s", m.ItemName, m.MaintenanceType),
			URL:   "/maintenance",
			Tag:   fmt.Sprintf("maintenance-%d", m.ID),
		}

		for i := range subs {
			if err := s.service.Send(&subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.push.DeleteByEndpoint(subs[i].Endpoint)
				} else {
					s.logger.Error("scheduler: send reminder", "error", err)
				}
			}
		}

		if err := s.push.MarkSent(userID, model.NotifTypeMaintenanceDue, refID); err != nil {
			s.logger.Error("scheduler: mark sent", "error", err)
		}
	}
}
