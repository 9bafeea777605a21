package task

import (
	"fmt"
	"strings"
)

// ValidationError describes a rejected field. The UI shell maps Field
// back to the offending input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the task against the save invariants. It never
// mutates t; a failing task must not be persisted.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	start, end, err := t.Span()
	if err != nil {
		return &ValidationError{Field: "startTime", Reason: err.Error()}
	}
	if end <= start {
		return &ValidationError{Field: "endTime", Reason: "must be after start time"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	if t.ReminderMinutes != nil && *t.ReminderMinutes <= 0 {
		return &ValidationError{Field: "reminderMinutes", Reason: "must be a positive number of minutes"}
	}
	if !t.Recurring.Valid() {
		return &ValidationError{Field: "recurring", Reason: fmt.Sprintf("unknown recurrence %q", t.Recurring)}
	}
	if !t.Color.Valid() {
		return &ValidationError{Field: "color", Reason: fmt.Sprintf("unknown color %q", t.Color)}
	}
	if len(t.AttachmentData) > MaxAttachmentBytes {
		return &ValidationError{Field: "attachmentData", Reason: "attachment exceeds 5 MiB"}
	}
	return nil
}
