package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/query"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	register := func(tag string, fn validator.Func) {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
	register("priority", validatePriority)
	register("recurrence", validateRecurrence)
	register("view", validateView)
	register("due_filter", validateDueFilter)
	register("sort_key", validateSortKey)
	register("theme", validateTheme)
}

func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

func validateRecurrence(fl validator.FieldLevel) bool {
	return ValidateRecurrence(fl.Field().String()) == nil
}

func validateView(fl validator.FieldLevel) bool {
	return ValidateView(fl.Field().String()) == nil
}

func validateDueFilter(fl validator.FieldLevel) bool {
	return ValidateDueFilter(fl.Field().String()) == nil
}

func validateSortKey(fl validator.FieldLevel) bool {
	return ValidateSortKey(fl.Field().String()) == nil
}

func validateTheme(fl validator.FieldLevel) bool {
	return ValidateTheme(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
	}
}

// ValidateRecurrence validates a Recurrence string value. The empty string
// means no recurrence and is valid.
func ValidateRecurrence(value string) error {
	switch models.Recurrence(value) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekdays,
		models.RecurrenceWeekly, models.RecurrenceBiweekly, models.RecurrenceMonthly,
		models.RecurrenceQuarterly, models.RecurrenceYearly:
		return nil
	default:
		return fmt.Errorf("invalid recurrence: %s", value)
	}
}

// ValidateView validates a view selector value.
func ValidateView(value string) error {
	switch query.View(value) {
	case query.ViewAll, query.ViewToday, query.ViewUpcoming, query.ViewImportant, query.ViewCompleted:
		return nil
	default:
		return fmt.Errorf("invalid view: %s (must be 'all', 'today', 'upcoming', 'important', or 'completed')", value)
	}
}

// ValidateDueFilter validates a due filter value.
func ValidateDueFilter(value string) error {
	switch query.DueFilter(value) {
	case query.DueAll, query.DueOverdue, query.DueToday, query.DueUpcoming, query.DueNoDate:
		return nil
	default:
		return fmt.Errorf("invalid due filter: %s (must be 'all', 'overdue', 'today', 'upcoming', or 'no-date')", value)
	}
}

// ValidateSortKey validates a sort key value.
func ValidateSortKey(value string) error {
	switch query.SortKey(value) {
	case query.SortCreatedDesc, query.SortCreatedAsc, query.SortDueAsc,
		query.SortDueDesc, query.SortPriorityDesc, query.SortPriorityAsc:
		return nil
	default:
		return fmt.Errorf("invalid sort key: %s", value)
	}
}

// ValidateTheme validates a theme preference value.
func ValidateTheme(value string) error {
	switch value {
	case "light", "dark":
		return nil
	default:
		return fmt.Errorf("invalid theme: %s (must be 'light' or 'dark')", value)
	}
}
