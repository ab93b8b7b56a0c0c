package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/models"
)

// flexID accepts both string and numeric ids. Records written by early
// versions of the app used millisecond timestamps as ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*f = ""
		return nil
	}
	*f = flexID(s)
	return nil
}

// taskRecord mirrors models.Task with every field optional, so stored blobs
// from any prior version decode without error. normalize turns a record
// into a validated Task with documented defaults substituted.
type taskRecord struct {
	ID            flexID            `json:"id"`
	Text          string            `json:"text"`
	Completed     bool              `json:"completed"`
	Priority      string            `json:"priority"`
	DueDate       *models.Date      `json:"dueDate"`
	Category      string            `json:"category"`
	IsImportant   bool              `json:"isImportant"`
	Notes         string            `json:"notes"`
	CreatedAt     *time.Time        `json:"createdAt"`
	CompletedAt   *time.Time        `json:"completedAt"`
	RemindAt      *time.Time        `json:"remindAt"`
	Subtasks      []subtaskRecord   `json:"subtasks"`
	Recurrence    string            `json:"recurrence"`
	Tags          []string          `json:"tags"`
	EstimatedTime *int              `json:"estimatedTime"`
	SyncStatus    string            `json:"syncStatus"`
}

type subtaskRecord struct {
	ID        flexID `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// normalize applies per-field defaults and restores the completion
// invariant. ok is false for records that cannot become a valid task
// (empty text); such records are dropped by the loader.
func (rec *taskRecord) normalize(now time.Time) (*models.Task, bool) {
	text := strings.TrimSpace(rec.Text)
	if text == "" {
		return nil, false
	}

	t := &models.Task{
		ID:            string(rec.ID),
		Text:          text,
		Completed:     rec.Completed,
		Priority:      models.Priority(rec.Priority),
		DueDate:       rec.DueDate,
		Category:      rec.Category,
		IsImportant:   rec.IsImportant,
		Notes:         rec.Notes,
		CompletedAt:   rec.CompletedAt,
		RemindAt:      rec.RemindAt,
		Recurrence:    models.Recurrence(rec.Recurrence),
		Tags:          rec.Tags,
		EstimatedTime: rec.EstimatedTime,
		SyncStatus:    models.SyncStatus(rec.SyncStatus),
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	switch t.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = "none"
	}
	if rec.CreatedAt != nil {
		t.CreatedAt = *rec.CreatedAt
	} else {
		t.CreatedAt = now
	}
	switch t.Recurrence {
	case models.RecurrenceDaily, models.RecurrenceWeekdays, models.RecurrenceWeekly,
		models.RecurrenceBiweekly, models.RecurrenceMonthly, models.RecurrenceQuarterly,
		models.RecurrenceYearly:
	default:
		t.Recurrence = models.RecurrenceNone
	}
	switch t.SyncStatus {
	case models.SyncStatusSynced, models.SyncStatusPending, models.SyncStatusFailed:
	default:
		t.SyncStatus = models.SyncStatusSynced
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	t.Subtasks = make([]models.Subtask, 0, len(rec.Subtasks))
	for _, sub := range rec.Subtasks {
		subText := strings.TrimSpace(sub.Text)
		if subText == "" {
			continue
		}
		id := string(sub.ID)
		if id == "" {
			id = uuid.NewString()
		}
		t.Subtasks = append(t.Subtasks, models.Subtask{
			ID:        id,
			Text:      subText,
			Completed: sub.Completed,
		})
	}

	// Restore the completedAt invariant for records written before it was
	// enforced.
	if t.Completed && t.CompletedAt == nil {
		at := t.CreatedAt
		t.CompletedAt = &at
	}
	if !t.Completed {
		t.CompletedAt = nil
	}

	return t, true
}

// applyDefaults fills the optional fields of a freshly built task the same
// way the loader does for stored records.
func applyDefaults(t *models.Task) {
	switch t.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = "none"
	}
	if t.SyncStatus == "" {
		t.SyncStatus = models.SyncStatusSynced
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
}

// decodeTasks reconstructs a task list from a stored blob, substituting
// defaults for missing optional fields. Records without text are dropped.
func decodeTasks(blob []byte, now time.Time) ([]*models.Task, error) {
	var records []taskRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("stored blob is not a task array: %w", err)
	}

	list := make([]*models.Task, 0, len(records))
	for i := range records {
		if t, ok := records[i].normalize(now); ok {
			list = append(list, t)
		}
	}
	return list, nil
}

// encodeTasks serializes the full task list as one JSON blob.
func encodeTasks(list []*models.Task) ([]byte, error) {
	if list == nil {
		list = []*models.Task{}
	}
	return json.Marshal(list)
}
