package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/notify"
	"github.com/taskflow/taskflow/internal/store"
	"github.com/taskflow/taskflow/internal/tasks"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	fail bool
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("permission denied")
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func newSchedulerFixture(t *testing.T) (*tasks.Repository, *recordingNotifier, *Scheduler, time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := tasks.NewRepository(store.NewMemoryStore(), zap.NewNop())
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	notifier := &recordingNotifier{}
	sched := New(repo, notifier, zap.NewNop())
	sched.SetClock(func() time.Time { return now })
	return repo, notifier, sched, now
}

func createWithReminder(t *testing.T, repo *tasks.Repository, text string, remindAt time.Time) *models.Task {
	t.Helper()
	task := &models.Task{Text: text, RemindAt: &remindAt}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}
	return task
}

func TestScheduler_TickDispatchesDueReminderOnce(t *testing.T) {
	t.Parallel()

	repo, notifier, sched, now := newSchedulerFixture(t)
	task := createWithReminder(t, repo, "water the plants", now.Add(-3*time.Minute))

	sched.Tick(context.Background())

	if got := notifier.count(); got != 1 {
		t.Fatalf("dispatched %d notifications, want 1", got)
	}
	n := notifier.sent[0]
	if n.TaskID != task.ID || n.Title != "water the plants" {
		t.Errorf("unexpected payload %+v", n)
	}

	// The reminder is consumed: remindAt cleared and persisted.
	reloaded, err := repo.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.RemindAt != nil {
		t.Error("remindAt not cleared after dispatch")
	}

	// A second tick stays silent.
	sched.Tick(context.Background())
	if got := notifier.count(); got != 1 {
		t.Errorf("reminder fired again on the next tick: %d dispatches", got)
	}
}

func TestScheduler_TickSkipsIneligibleTasks(t *testing.T) {
	t.Parallel()

	repo, notifier, sched, now := newSchedulerFixture(t)

	createWithReminder(t, repo, "future", now.Add(10*time.Minute))
	createWithReminder(t, repo, "long missed", now.Add(-time.Hour))
	stale := createWithReminder(t, repo, "already done", now.Add(-time.Minute))
	if _, _, err := repo.ToggleComplete(context.Background(), stale.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := repo.Create(context.Background(), &models.Task{Text: "no reminder"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	sched.Tick(context.Background())
	if got := notifier.count(); got != 0 {
		t.Errorf("dispatched %d notifications, want 0", got)
	}
}

func TestScheduler_TickDispatchesAllEligible(t *testing.T) {
	t.Parallel()

	repo, notifier, sched, now := newSchedulerFixture(t)
	a := createWithReminder(t, repo, "first", now.Add(-time.Minute))
	b := createWithReminder(t, repo, "second", now.Add(-2*time.Minute))

	sched.Tick(context.Background())

	if got := notifier.count(); got != 2 {
		t.Fatalf("dispatched %d notifications, want 2", got)
	}
	seen := map[string]bool{}
	for _, n := range notifier.sent {
		seen[n.TaskID] = true
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Errorf("missing dispatches: %v", seen)
	}
}

func TestScheduler_NotifierFailureIsNonFatalAndConsumesReminder(t *testing.T) {
	t.Parallel()

	repo, notifier, sched, now := newSchedulerFixture(t)
	task := createWithReminder(t, repo, "flaky sink", now.Add(-time.Minute))
	notifier.fail = true

	sched.Tick(context.Background())

	reloaded, err := repo.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.RemindAt != nil {
		t.Error("failed notification left the reminder armed")
	}

	// Next tick must not retry it.
	notifier.fail = false
	sched.Tick(context.Background())
	if got := notifier.count(); got != 0 {
		t.Errorf("consumed reminder fired later: %d dispatches", got)
	}
}
