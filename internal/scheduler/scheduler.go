// Package scheduler polls the repository for due reminders and dispatches
// them to the notification sink.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/notify"
	"github.com/taskflow/taskflow/internal/tasks"
)

// TickInterval is how often the scheduler scans for due reminders.
const TickInterval = time.Minute

// Scheduler runs the reminder loop: one tick at startup, then one per
// minute. Each tick dispatches every eligible reminder exactly once and
// clears it, so a reminder never fires twice even when the notifier fails
// (failures are logged and the schedule keeps going).
type Scheduler struct {
	repo     *tasks.Repository
	notifier notify.Notifier
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// New creates a scheduler over the given repository and notifier.
func New(repo *tasks.Repository, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// SetClock overrides the scheduler clock. Used by tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start runs one immediate tick, then ticks every minute until Stop. The
// context bounds the work of each tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.Tick(ctx)
	_, err := s.cron.AddFunc("@every 1m", func() {
		s.Tick(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reminder_scheduler_started", zap.Duration("interval", TickInterval))
	return nil
}

// Stop halts the tick schedule and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reminder_scheduler_stopped")
}

// Tick scans the current snapshot and dispatches every due reminder. Each
// eligible task is notified once and its remindAt cleared; order within a
// tick is unspecified.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	dispatched := 0

	for _, task := range s.repo.List() {
		if !task.ShouldRemind(now) {
			continue
		}

		n := notify.FromReminder(task.GetReminderOptions(), now)
		if err := s.notifier.Notify(ctx, n); err != nil {
			// Non-fatal: the reminder is still consumed below so it
			// cannot fire again on the next tick.
			s.logger.Warn("reminder_notification_failed",
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
		} else {
			s.logger.Info("reminder_dispatched",
				zap.String("task_id", task.ID),
				zap.String("notification_id", n.ID),
			)
		}

		if err := s.repo.ClearReminder(ctx, task.ID); err != nil {
			s.logger.Error("failed_to_clear_reminder",
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
			continue
		}
		dispatched++
	}

	if dispatched > 0 {
		s.logger.Info("reminder_tick_complete", zap.Int("dispatched", dispatched))
	}
}
