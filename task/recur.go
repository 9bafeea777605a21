package task

import (
	"time"

	"github.com/timeflowapp/timeflow/clock"
)

// Matches reports whether recurring task t projects a virtual
// occurrence onto target. Recurrence only projects forward: target
// must be strictly after the base date.
//
// A monthly task based on the 29th, 30th or 31st produces no
// occurrence in months too short to contain that day. That is the
// documented behavior, not an oversight; changing it to clamp to the
// nearest valid day would silently move tasks the user pinned to a
// specific day of month.
func Matches(t *Task, target clock.Date) bool {
	if t.Recurring == RecurNone || !target.After(t.Date) {
		return false
	}
	switch t.Recurring {
	case RecurDaily:
		return true
	case RecurWeekly:
		return t.Date.Weekday() == target.Weekday()
	case RecurWeekdays:
		wd := target.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case RecurMonthly:
		return t.Date.Day == target.Day
	}
	return false
}

// Virtualize projects t onto target as a virtual occurrence: a shallow
// copy with the date overridden and the back-reference set.
func Virtualize(t *Task, target clock.Date) Occurrence {
	copied := *t
	copied.Date = target
	return Occurrence{Task: copied, Virtual: true, OriginalID: t.ID}
}

// ExpandVirtual materializes virtual occurrences on target for every
// matching recurring task. Tasks whose base date is target itself are
// excluded; those surface as direct occurrences instead.
func ExpandVirtual(tasks []*Task, target clock.Date) []Occurrence {
	var out []Occurrence
	for _, t := range tasks {
		if t.Date == target {
			continue
		}
		if Matches(t, target) {
			out = append(out, Virtualize(t, target))
		}
	}
	return out
}
