// Package task defines the day-planner task model and its SQLite
// persistence for tasks and settings.
package task

import (
	"encoding/json"
	"time"

	"github.com/timeflowapp/timeflow/clock"
)

// Recurrence governs virtual-occurrence expansion onto later dates.
type Recurrence string

const (
	RecurNone     Recurrence = ""
	RecurDaily    Recurrence = "daily"
	RecurWeekly   Recurrence = "weekly"
	RecurWeekdays Recurrence = "weekdays"
	RecurMonthly  Recurrence = "monthly"
)

// Valid reports whether r is a known recurrence value.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurWeekdays, RecurMonthly:
		return true
	}
	return false
}

// Color is a presentational tag from the fixed palette.
type Color string

const (
	ColorNone   Color = ""
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
)

// Valid reports whether c is in the palette.
func (c Color) Valid() bool {
	switch c {
	case ColorNone, ColorRed, ColorOrange, ColorGreen, ColorBlue, ColorPurple, ColorPink:
		return true
	}
	return false
}

// MaxAttachmentBytes caps the embedded attachment payload.
const MaxAttachmentBytes = 5 << 20

// Task is a planned activity on the timeline. JSON field names follow
// the contract the UI shell and the external regression suite consume.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	StartTime       string     `json:"startTime"` // "HH:MM", 24-hour
	EndTime         string     `json:"endTime"`   // strictly after StartTime
	Date            clock.Date `json:"date"`
	Description     string     `json:"description,omitempty"`
	IsImportant     bool       `json:"isImportant"`
	ReminderMinutes *int       `json:"reminderMinutes,omitempty"` // minutes before StartTime
	Recurring       Recurrence `json:"recurring,omitempty"`
	Color           Color      `json:"color,omitempty"`
	AttachmentData  string     `json:"attachmentData,omitempty"`
	ForkedFrom      string     `json:"forkedFrom,omitempty"` // recurring task this standalone copy was split from
	IsCompleted     bool       `json:"isCompleted"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Span returns the task's start and end clock times.
func (t *Task) Span() (start, end clock.Minutes, err error) {
	if start, err = clock.ParseClock(t.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = clock.ParseClock(t.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Occurrence is a task as it appears on a specific calendar date:
// either the stored base task, or a virtual projection of a recurring
// task onto a later date. Virtual occurrences are never persisted.
type Occurrence struct {
	Task
	Virtual    bool
	OriginalID string
}

// InstanceID yields the identity the UI shell addresses this
// occurrence by: the stored id for base occurrences, or the composite
// "{originalId}_{date}" for virtual ones.
func (o Occurrence) InstanceID() string {
	if !o.Virtual {
		return o.Task.ID
	}
	return o.OriginalID + "_" + o.Date.String()
}

// MarshalJSON emits base occurrences as plain tasks, and virtual ones
// with the composite id, the originalId back-reference, and the
// isRecurringInstance marker.
func (o Occurrence) MarshalJSON() ([]byte, error) {
	type plain Task
	if !o.Virtual {
		return json.Marshal(plain(o.Task))
	}
	return json.Marshal(struct {
		plain
		ID                  string `json:"id"`
		OriginalID          string `json:"originalId"`
		IsRecurringInstance bool   `json:"isRecurringInstance"`
	}{
		plain:               plain(o.Task),
		ID:                  o.InstanceID(),
		OriginalID:          o.OriginalID,
		IsRecurringInstance: true,
	})
}

// Store persists and retrieves tasks and settings.
type Store interface {
	// SaveTask validates and upserts t. A missing ID is generated;
	// UpdatedAt is always refreshed and CreatedAt set only when absent.
	SaveTask(t *Task) error

	// Task retrieves a task by id, or ErrTaskNotFound.
	Task(id string) (*Task, error)

	// TasksByDate returns the base occurrences stored on date together
	// with virtual occurrences projected by recurring tasks. A recurring
	// task projects nothing onto a date that holds a standalone copy
	// forked from it. Order is unspecified; callers sort.
	TasksByDate(date clock.Date) ([]Occurrence, error)

	// DeleteTask removes a task. Deleting an unknown id is not an error.
	DeleteTask(id string) error

	// TaskTitles returns all distinct titles in creation order.
	TaskTitles() ([]string, error)

	// Setting reads one setting into out, reporting whether it existed.
	Setting(key string, out any) (bool, error)

	// SetSetting stores one setting value.
	SetSetting(key string, value any) error

	// Settings returns the typed settings view with defaults applied.
	Settings() (Settings, error)
}
