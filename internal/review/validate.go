package review

import "fmt"

const (
	severityError   = "error"
	severityWarning = "warning"
)

type ValidationError struct {
	Location string
	Message  string
	Severity string // "error" or "warning"
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// ValidationResult collects broken invariants of a State.
// Dangling subject and category references are warnings because they are read as "unassigned".
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) addError(location, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Location: location,
		Message:  fmt.Sprintf(format, args...),
		Severity: severityError,
	})
}

func (r *ValidationResult) addWarning(location, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Location: location,
		Message:  fmt.Sprintf(format, args...),
		Severity: severityWarning,
	})
}

// Validate checks id uniqueness, references and repetition records against today.
func (s State) Validate(today Date) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[string]string)
	checkID := func(kind, id, location string) {
		if id == "" {
			result.addError(location, "%s has an empty id", kind)
			return
		}
		if other, ok := seen[id]; ok {
			result.addError(location, "id %s is already used by %s", id, other)
			return
		}
		seen[id] = location
	}

	categories := make(map[string]struct{}, len(s.Categories))
	for i, category := range s.Categories {
		checkID("category", category.ID, fmt.Sprintf("categories[%d]", i))
		categories[category.ID] = struct{}{}
	}

	subjects := make(map[string]struct{}, len(s.Subjects))
	for i, subject := range s.Subjects {
		location := fmt.Sprintf("subjects[%d]", i)
		checkID("subject", subject.ID, location)
		subjects[subject.ID] = struct{}{}
		if subject.CategoryID == "" {
			continue
		}
		if _, ok := categories[subject.CategoryID]; !ok {
			result.addWarning(location, "category %s does not exist", subject.CategoryID)
		}
	}

	for i, item := range s.Items {
		location := fmt.Sprintf("items[%d]", i)
		checkID("item", item.ID, location)
		if item.SubjectID != "" {
			if _, ok := subjects[item.SubjectID]; !ok {
				result.addWarning(location, "subject %s does not exist", item.SubjectID)
			}
		}
		if item.RepInfo == nil {
			continue
		}
		if item.RepInfo.Interval < 1 {
			result.addError(location, "interval must be positive, got %d", item.RepInfo.Interval)
		}
		if item.RepInfo.LastCompletion.After(today) {
			result.addError(location, "last completion %s is after today %s", item.RepInfo.LastCompletion, today)
		}
	}
	return result
}
