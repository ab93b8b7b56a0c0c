package models

import "time"

// Recurrence names the interval at which a completed task respawns. The
// empty value means the task does not repeat.
type Recurrence string

const (
	RecurrenceNone      Recurrence = ""
	RecurrenceDaily     Recurrence = "daily"
	RecurrenceWeekdays  Recurrence = "weekdays"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceBiweekly  Recurrence = "biweekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
	RecurrenceYearly    Recurrence = "yearly"
)

// NextOccurrence maps (due date, recurrence rule) to the next due date.
// It is stateless: each call advances exactly one interval. ok is false for
// RecurrenceNone and unknown rules.
func NextOccurrence(due Date, rule Recurrence) (next Date, ok bool) {
	switch rule {
	case RecurrenceDaily:
		return due.AddDays(1), true
	case RecurrenceWeekdays:
		next = due.AddDays(1)
		switch next.Weekday() {
		case time.Saturday:
			next = next.AddDays(2)
		case time.Sunday:
			next = next.AddDays(1)
		}
		return next, true
	case RecurrenceWeekly:
		return due.AddDays(7), true
	case RecurrenceBiweekly:
		return due.AddDays(14), true
	case RecurrenceMonthly:
		return due.AddMonths(1), true
	case RecurrenceQuarterly:
		return due.AddMonths(3), true
	case RecurrenceYearly:
		return due.AddYears(1), true
	default:
		return Date{}, false
	}
}
