// Package tasks owns the ordered task collection and its persistence. The
// discipline is read-snapshot, mutate, write-snapshot: every mutating
// operation serializes the full list back to the store as one blob under the
// todos key, and rolls the in-memory state back when the write fails.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/store"
)

var (
	// ErrNotFound is returned when no task matches the given id.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyText is returned when a task would be created or edited with
	// empty text after trimming.
	ErrEmptyText = errors.New("task text cannot be empty")
	// ErrImportFormat is returned when an import payload does not contain a
	// task list.
	ErrImportFormat = errors.New("import payload does not contain a task list")
)

// Repository holds the ordered task list, newest-inserted-first, and keeps
// it synchronized with the persistent store.
type Repository struct {
	mu     sync.Mutex
	store  store.Store
	logger *zap.Logger
	tasks  []*models.Task
	now    func() time.Time
}

// NewRepository creates an empty repository backed by the given store.
// Call Load before serving requests.
func NewRepository(st store.Store, logger *zap.Logger) *Repository {
	return &Repository{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the repository clock. Used by tests.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// Load reads the stored task blob and reconstructs the task list. A missing
// blob yields an empty repository, not an error.
func (r *Repository) Load(ctx context.Context) error {
	blob, found, err := r.store.Get(ctx, store.KeyTodos)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if !found {
		r.logger.Info("no_stored_tasks_starting_empty")
		return nil
	}

	list, err := decodeTasks(blob, r.now())
	if err != nil {
		return fmt.Errorf("failed to decode stored tasks: %w", err)
	}

	r.mu.Lock()
	r.tasks = list
	r.mu.Unlock()

	r.logger.Info("loaded_tasks", zap.Int("count", len(list)))
	return nil
}

// Create validates and inserts a new task at the front of the list,
// assigning its id and creation time, and persists. The passed task is
// completed with the assigned fields on success.
func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		return ErrEmptyText
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	t.Completed = false
	t.CompletedAt = nil
	applyDefaults(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.tasks
	r.tasks = append([]*models.Task{t.Clone()}, r.tasks...)
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return err
	}
	return nil
}

// Get returns a deep copy of the task with the given id.
func (r *Repository) Get(id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Update replaces the stored entry with the given task and persists. Text
// edits to empty text are rejected before any state changes.
func (r *Repository) Update(ctx context.Context, t *models.Task) error {
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		return ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(t.ID)
	if idx < 0 {
		return ErrNotFound
	}
	prev := r.tasks
	next := make([]*models.Task, len(r.tasks))
	copy(next, r.tasks)
	next[idx] = t.Clone()
	r.tasks = next
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return err
	}
	return nil
}

// Delete removes the task with the given id and persists.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	prev := r.tasks
	next := make([]*models.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:idx]...)
	next = append(next, r.tasks[idx+1:]...)
	r.tasks = next
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return err
	}
	return nil
}

// ToggleComplete flips completion on the task with the given id. When
// completing a task with an active recurrence rule, the spawned next
// occurrence is inserted at the front of the list. Both the toggled task
// and the spawned occurrence (nil when none) are returned. The toggle and
// the spawn persist together or not at all.
func (r *Repository) ToggleComplete(ctx context.Context, id string) (toggled, spawned *models.Task, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return nil, nil, ErrNotFound
	}

	task := r.tasks[idx].Clone()
	next := task.SetCompleted(!task.Completed, r.now())

	prev := r.tasks
	updated := make([]*models.Task, len(r.tasks))
	copy(updated, r.tasks)
	updated[idx] = task
	if next != nil {
		updated = append([]*models.Task{next}, updated...)
	}
	r.tasks = updated
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return nil, nil, err
	}

	if next != nil {
		r.logger.Info("spawned_next_occurrence",
			zap.String("task_id", task.ID),
			zap.String("next_id", next.ID),
			zap.String("due_date", next.DueDate.String()),
		)
		spawned = next.Clone()
	}
	return task.Clone(), spawned, nil
}

// ClearReminder removes the one-shot reminder from the task with the given
// id and persists. Used by the scheduler after dispatching a notification.
func (r *Repository) ClearReminder(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	prev := r.tasks
	next := make([]*models.Task, len(r.tasks))
	copy(next, r.tasks)
	cleared := next[idx].Clone()
	cleared.RemindAt = nil
	next[idx] = cleared
	r.tasks = next
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return err
	}
	return nil
}

// List returns a deep-copied snapshot of the task list in repository order.
func (r *Repository) List() []*models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Replace swaps the entire repository contents, used by import. The new
// list persists before the swap becomes visible.
func (r *Repository) Replace(ctx context.Context, list []*models.Task) error {
	cloned := make([]*models.Task, len(list))
	for i, t := range list {
		cloned[i] = t.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.tasks
	r.tasks = cloned
	if err := r.persistLocked(ctx); err != nil {
		r.tasks = prev
		return err
	}
	return nil
}

// Stats returns the aggregate counts over the current list.
func (r *Repository) Stats() models.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.CountStats(r.tasks)
}

func (r *Repository) indexLocked(id string) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) persistLocked(ctx context.Context) error {
	blob, err := encodeTasks(r.tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyTodos, blob); err != nil {
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	return nil
}
