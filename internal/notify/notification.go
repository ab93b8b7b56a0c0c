// Package notify carries reminder notifications from the scheduler to the
// user-facing sink. The scheduler publishes payloads; the notifier worker
// delivers them and routes the chosen action back to the core.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/models"
)

// Action names a button on a delivered notification.
type Action string

const (
	// ActionView opens the task; it needs no routing back to the core.
	ActionView Action = "view"
	// ActionComplete toggles completion on the target task.
	ActionComplete Action = "complete"
)

// Notification is the payload handed to the notification sink.
type Notification struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Actions   []Action  `json:"actions"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromReminder builds the notification for a task's reminder payload.
func FromReminder(opts models.ReminderOptions, now time.Time) Notification {
	return Notification{
		ID:        uuid.NewString(),
		TaskID:    opts.TaskID,
		Title:     opts.Title,
		Body:      opts.Body,
		Actions:   []Action{ActionView, ActionComplete},
		CreatedAt: now,
	}
}

// Notifier is the sink the reminder scheduler dispatches to.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
