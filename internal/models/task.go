package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Priority represents how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the fixed ordering weight of a priority (high=3, medium=2,
// low=1). Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// SyncStatus is an advisory marker for a future cloud-sync integration.
// Nothing acts on it today; it is carried and persisted as-is.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

// ReminderGrace is how long after its remindAt instant a missed reminder is
// still eligible to fire.
const ReminderGrace = 5 * time.Minute

// Subtask is a single checklist entry belonging to a task
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task represents a single to-do item with its scheduling and
// categorization metadata. Field names match the stored JSON records.
type Task struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Completed     bool       `json:"completed"`
	Priority      Priority   `json:"priority"`
	DueDate       *Date      `json:"dueDate,omitempty"`
	Category      string     `json:"category"`
	IsImportant   bool       `json:"isImportant"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	RemindAt      *time.Time `json:"remindAt,omitempty"`
	Subtasks      []Subtask  `json:"subtasks"`
	Recurrence    Recurrence `json:"recurrence,omitempty"`
	Tags          []string   `json:"tags"`
	EstimatedTime *int       `json:"estimatedTime,omitempty"`
	SyncStatus    SyncStatus `json:"syncStatus"`
}

// Clone returns a deep copy of the task. The repository hands out clones so
// callers mutate in isolation and write changes back explicitly.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.RemindAt != nil {
		at := *t.RemindAt
		c.RemindAt = &at
	}
	if t.EstimatedTime != nil {
		est := *t.EstimatedTime
		c.EstimatedTime = &est
	}
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// IsOverdue reports whether the task has a due date strictly before today
// and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// IsDueToday reports whether the task is due on the current calendar day,
// regardless of completion.
func (t *Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Equal(DateOf(now))
}

// IsDueThisWeek reports whether the due date falls within the
// Sunday-Saturday calendar week containing now.
func (t *Task) IsDueThisWeek(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	today := DateOf(now)
	weekStart := today.AddDays(-int(today.Weekday()))
	weekEnd := weekStart.AddDays(6)
	return !t.DueDate.Before(weekStart) && !t.DueDate.After(weekEnd)
}

// AddSubtask appends a new incomplete subtask and returns it.
func (t *Task) AddSubtask(text string) Subtask {
	sub := Subtask{ID: uuid.NewString(), Text: text}
	t.Subtasks = append(t.Subtasks, sub)
	return sub
}

// DeleteSubtask removes the subtask with the given id. It is a no-op when
// the id is absent.
func (t *Task) DeleteSubtask(id string) {
	t.Subtasks = slices.DeleteFunc(t.Subtasks, func(s Subtask) bool {
		return s.ID == id
	})
}

// ToggleSubtask flips completion on the matching subtask and recomputes the
// parent's completion: all subtasks complete forces the task complete, any
// incomplete subtask forces it incomplete. The recompute only applies to
// tasks that actually have subtasks, so directly completed tasks without a
// checklist are never affected. Returns false when no subtask matches.
func (t *Task) ToggleSubtask(id string, now time.Time) bool {
	idx := slices.IndexFunc(t.Subtasks, func(s Subtask) bool {
		return s.ID == id
	})
	if idx < 0 {
		return false
	}
	t.Subtasks[idx].Completed = !t.Subtasks[idx].Completed

	allDone := true
	for _, s := range t.Subtasks {
		if !s.Completed {
			allDone = false
			break
		}
	}
	t.setCompleted(allDone, now)
	return true
}

// SetCompleted marks the task complete or incomplete, maintaining
// completedAt. Completing a task with an active recurrence rule and a due
// date returns the freshly built next occurrence; otherwise it returns nil.
func (t *Task) SetCompleted(done bool, now time.Time) *Task {
	t.setCompleted(done, now)
	if !done {
		return nil
	}
	next, ok := t.NextDueDate()
	if !ok {
		return nil
	}
	return &Task{
		ID:            uuid.NewString(),
		Text:          t.Text,
		Priority:      t.Priority,
		DueDate:       &next,
		Category:      t.Category,
		IsImportant:   t.IsImportant,
		Notes:         t.Notes,
		CreatedAt:     now,
		Recurrence:    t.Recurrence,
		Tags:          slices.Clone(t.Tags),
		EstimatedTime: t.EstimatedTime,
		SyncStatus:    SyncStatusSynced,
	}
}

func (t *Task) setCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
}

// NextDueDate computes the due date of the next occurrence from the current
// due date and recurrence rule. ok is false when the task has no recurrence
// or no due date.
func (t *Task) NextDueDate() (next Date, ok bool) {
	if t.DueDate == nil {
		return Date{}, false
	}
	return NextOccurrence(*t.DueDate, t.Recurrence)
}

// ShouldRemind reports whether the task's reminder is due: remindAt is set,
// the task is not completed, and remindAt lies between ReminderGrace in the
// past (inclusive) and now. A reminder missed by more than the grace window
// stays silent.
func (t *Task) ShouldRemind(now time.Time) bool {
	if t.RemindAt == nil || t.Completed {
		return false
	}
	earliest := now.Add(-ReminderGrace)
	return !t.RemindAt.Before(earliest) && !t.RemindAt.After(now)
}

// ReminderOptions is the display payload handed to the notification sink.
type ReminderOptions struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// GetReminderOptions builds the notification payload for this task.
// Important tasks get a star marker on the title.
func (t *Task) GetReminderOptions() ReminderOptions {
	title := t.Text
	if t.IsImportant {
		title = "★ " + title
	}
	body := fmt.Sprintf("Priority: %s", t.Priority)
	if t.DueDate != nil {
		body = fmt.Sprintf("Due %s · %s", t.DueDate, body)
	}
	return ReminderOptions{TaskID: t.ID, Title: title, Body: body}
}

// Stats holds the aggregate counts shown alongside a task list.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// CountStats computes aggregate counts over a task snapshot.
func CountStats(tasks []*Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
