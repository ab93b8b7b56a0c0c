// Package query implements the pipeline that turns the repository snapshot
// into the rendered list: view selector, field filters, text search and a
// stable sort, applied in that fixed order. The pipeline is a pure function
// of its inputs; ties preserve repository order.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/taskflow/taskflow/internal/models"
)

// View is a coarse named partition of the task list.
type View string

const (
	ViewAll       View = "all"
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewImportant View = "important"
	ViewCompleted View = "completed"
)

// DueFilter narrows by due-date class.
type DueFilter string

const (
	DueAll      DueFilter = "all"
	DueOverdue  DueFilter = "overdue"
	DueToday    DueFilter = "today"
	DueUpcoming DueFilter = "upcoming"
	DueNoDate   DueFilter = "no-date"
)

// SortKey names the final ordering.
type SortKey string

const (
	SortCreatedDesc  SortKey = "created-desc"
	SortCreatedAsc   SortKey = "created-asc"
	SortDueAsc       SortKey = "due-asc"
	SortDueDesc      SortKey = "due-desc"
	SortPriorityDesc SortKey = "priority-desc"
	SortPriorityAsc  SortKey = "priority-asc"
)

// FilterAll is the wildcard value for the priority and category filters.
const FilterAll = "all"

// Params are the pipeline inputs. Zero values mean "no narrowing" and the
// default created-desc ordering.
type Params struct {
	View     View
	Priority string
	Category string
	Due      DueFilter
	Search   string
	Sort     SortKey
}

// Apply runs the pipeline over a snapshot and returns the ordered result.
// The input slice is not modified.
func Apply(snapshot []*models.Task, p Params, now time.Time) []*models.Task {
	out := make([]*models.Task, 0, len(snapshot))
	search := strings.ToLower(strings.TrimSpace(p.Search))

	for _, t := range snapshot {
		if !matchesView(t, p.View, now) {
			continue
		}
		if p.Priority != "" && p.Priority != FilterAll && string(t.Priority) != p.Priority {
			continue
		}
		if p.Category != "" && p.Category != FilterAll && t.Category != p.Category {
			continue
		}
		if !matchesDue(t, p.Due, now) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Text), search) &&
			!strings.Contains(strings.ToLower(t.Notes), search) {
			continue
		}
		out = append(out, t)
	}

	sortTasks(out, p.Sort)
	return out
}

// isUpcoming is the view definition from the filter bar: dated, not due
// today and not overdue.
func isUpcoming(t *models.Task, now time.Time) bool {
	return t.DueDate != nil && !t.IsDueToday(now) && !t.IsOverdue(now)
}

func matchesView(t *models.Task, v View, now time.Time) bool {
	switch v {
	case ViewToday:
		return t.IsDueToday(now)
	case ViewUpcoming:
		return isUpcoming(t, now)
	case ViewImportant:
		return t.IsImportant
	case ViewCompleted:
		return t.Completed
	default:
		return true
	}
}

func matchesDue(t *models.Task, d DueFilter, now time.Time) bool {
	switch d {
	case DueOverdue:
		return t.IsOverdue(now)
	case DueToday:
		return t.IsDueToday(now)
	case DueUpcoming:
		return isUpcoming(t, now)
	case DueNoDate:
		return t.DueDate == nil
	default:
		return true
	}
}

func sortTasks(list []*models.Task, key SortKey) {
	switch key {
	case SortCreatedAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	case SortDueAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return lessByDue(list[i], list[j], false)
		})
	case SortDueDesc:
		sort.SliceStable(list, func(i, j int) bool {
			return lessByDue(list[i], list[j], true)
		})
	case SortPriorityDesc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority.Rank() > list[j].Priority.Rank()
		})
	case SortPriorityAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority.Rank() < list[j].Priority.Rank()
		})
	default: // created-desc
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}

// lessByDue orders dated tasks by due date; undated tasks sort after all
// dated ones no matter the direction.
func lessByDue(a, b *models.Task, desc bool) bool {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return false
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	case desc:
		return a.DueDate.After(*b.DueDate)
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}
