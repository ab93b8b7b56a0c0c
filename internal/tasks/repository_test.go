package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/store"
)

// failingStore wraps a Store and fails writes on demand.
type failingStore struct {
	store.Store
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("store unavailable")
	}
	return f.Store.Set(ctx, key, value)
}

func newTestRepo(t *testing.T, st store.Store) *Repository {
	t.Helper()
	repo := NewRepository(st, zap.NewNop())
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return repo
}

func TestRepository_CreateAssignsIdentityAndPrepends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	first := &models.Task{Text: "first"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Error("create did not assign id and createdAt")
	}
	if first.Priority != models.PriorityMedium || first.Category != "none" {
		t.Errorf("defaults not applied: priority=%s category=%s", first.Priority, first.Category)
	}
	if first.SyncStatus != models.SyncStatusSynced {
		t.Errorf("syncStatus = %s, want synced", first.SyncStatus)
	}

	second := &models.Task{Text: "second"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	list := repo.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("newest task is not at the front of the list")
	}
}

func TestRepository_CreateRejectsEmptyText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	for _, text := range []string{"", "   ", "\t\n"} {
		if err := repo.Create(ctx, &models.Task{Text: text}); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Create(%q) = %v, want ErrEmptyText", text, err)
		}
	}
	if len(repo.List()) != 0 {
		t.Error("rejected create mutated the repository")
	}
}

func TestRepository_PersistFailureRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := &failingStore{Store: store.NewMemoryStore()}
	repo := newTestRepo(t, st)

	keep := &models.Task{Text: "keep me"}
	if err := repo.Create(ctx, keep); err != nil {
		t.Fatalf("create: %v", err)
	}

	st.failSet = true
	if err := repo.Create(ctx, &models.Task{Text: "lost"}); err == nil {
		t.Fatal("expected create to fail when the store is down")
	}
	if err := repo.Delete(ctx, keep.ID); err == nil {
		t.Fatal("expected delete to fail when the store is down")
	}
	if _, _, err := repo.ToggleComplete(ctx, keep.ID); err == nil {
		t.Fatal("expected toggle to fail when the store is down")
	}

	list := repo.List()
	if len(list) != 1 || list[0].ID != keep.ID || list[0].Completed {
		t.Errorf("failed operations were partially applied: %+v", list)
	}
}

func TestRepository_GetReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	task := &models.Task{Text: "original"}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Text = "mutated"
	got.AddSubtask("sneaky")

	fresh, _ := repo.Get(task.ID)
	if fresh.Text != "original" || len(fresh.Subtasks) != 0 {
		t.Error("mutation of a Get copy leaked into the repository")
	}

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestRepository_ToggleCompleteSpawnsRecurrence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	due := models.NewDate(2024, 3, 1) // Friday
	task := &models.Task{
		Text:       "weekly standup notes",
		Priority:   models.PriorityHigh,
		Category:   "work",
		DueDate:    &due,
		Recurrence: models.RecurrenceWeekly,
	}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, spawned, err := repo.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Error("toggle did not complete the task")
	}
	if spawned == nil {
		t.Fatal("no next occurrence spawned")
	}
	if spawned.DueDate.String() != "2024-03-08" {
		t.Errorf("spawned due date = %s, want 2024-03-08", spawned.DueDate)
	}
	if spawned.Text != task.Text || spawned.Priority != task.Priority || spawned.Category != task.Category {
		t.Error("spawned occurrence lost text/priority/category")
	}

	list := repo.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks after spawn, got %d", len(list))
	}
	if list[0].ID != spawned.ID {
		t.Error("spawned occurrence is not at the front of the list")
	}

	// Un-completing does not spawn again.
	_, again, err := repo.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if again != nil {
		t.Error("un-completing spawned an occurrence")
	}
}

func TestRepository_RoundTripThroughStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemoryStore()
	repo := newTestRepo(t, st)

	est := 45
	remindAt := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	due := models.NewDate(2024, 3, 21)
	task := &models.Task{
		Text:          "prepare slides",
		Priority:      models.PriorityHigh,
		Category:      "work",
		IsImportant:   true,
		Notes:         "use last quarter's deck",
		DueDate:       &due,
		RemindAt:      &remindAt,
		Recurrence:    models.RecurrenceMonthly,
		Tags:          []string{"meeting", "q2"},
		EstimatedTime: &est,
	}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	copy, _ := repo.Get(task.ID)
	copy.AddSubtask("outline")
	if err := repo.Update(ctx, copy); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A second repository rebuilt from the same store must see an
	// identical list.
	reloaded := newTestRepo(t, st)
	want := repo.List()
	got := reloaded.List()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(normalizeForCompare(want[i]), normalizeForCompare(got[i])) {
			t.Errorf("task %d differs after round trip:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

// normalizeForCompare strips wall-clock monotonic readings so DeepEqual
// compares times by instant.
func normalizeForCompare(t *models.Task) *models.Task {
	c := t.Clone()
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Second)
	if c.CompletedAt != nil {
		at := c.CompletedAt.UTC().Truncate(time.Second)
		c.CompletedAt = &at
	}
	if c.RemindAt != nil {
		at := c.RemindAt.UTC().Truncate(time.Second)
		c.RemindAt = &at
	}
	return c
}

func TestRepository_LoadToleratesLegacyRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemoryStore()

	// A record in the oldest stored format: numeric id, no optional fields.
	legacy := `[
		{"id": 1709290000000, "text": "old style", "completed": true},
		{"id": "", "text": "   "},
		{"text": "bare minimum"}
	]`
	if err := st.Set(ctx, store.KeyTodos, []byte(legacy)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	repo := newTestRepo(t, st)
	list := repo.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks (blank text dropped), got %d", len(list))
	}

	old := list[0]
	if old.ID != "1709290000000" {
		t.Errorf("numeric id not preserved as string: %q", old.ID)
	}
	if old.Priority != models.PriorityMedium || old.Category != "none" {
		t.Errorf("defaults not substituted: %+v", old)
	}
	if !old.Completed || old.CompletedAt == nil {
		t.Error("completed legacy record did not get a completedAt")
	}

	bare := list[1]
	if bare.ID == "" {
		t.Error("missing id was not assigned")
	}
	if bare.Tags == nil || bare.Subtasks == nil {
		t.Error("nil collections not defaulted")
	}
}

func TestRepository_LoadMissingBlobYieldsEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t, store.NewMemoryStore())
	if got := repo.List(); len(got) != 0 {
		t.Errorf("expected empty repository, got %d tasks", len(got))
	}
	if got := repo.Stats(); got != (models.Stats{}) {
		t.Errorf("expected zero stats, got %+v", got)
	}
}

func TestRepository_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	for _, text := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, &models.Task{Text: text}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list := repo.List()
	if _, _, err := repo.ToggleComplete(ctx, list[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got := repo.Stats()
	want := models.Stats{Total: 3, Completed: 1, Pending: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestRepository_StoredBlobShape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemoryStore()
	repo := newTestRepo(t, st)

	if err := repo.Create(ctx, &models.Task{Text: "check the wire shape"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	blob, found, err := st.Get(ctx, store.KeyTodos)
	if err != nil || !found {
		t.Fatalf("store get: found=%v err=%v", found, err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("stored blob is not a JSON array: %v", err)
	}
	rec := raw[0]
	for _, field := range []string{"id", "text", "completed", "priority", "category", "isImportant", "createdAt", "subtasks", "tags", "syncStatus"} {
		if _, ok := rec[field]; !ok {
			t.Errorf("stored record missing field %q", field)
		}
	}
}
