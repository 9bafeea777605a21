package timeline

import (
	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
)

// ReminderLineX is the horizontal position of reminder countdown lines.
const ReminderLineX = 75.0

// Indicator marks a card that has a pending reminder.
type Indicator struct {
	InstanceID  string  `json:"instanceId"`
	Y           float64 `json:"y"`
	Triggered   bool    `json:"triggered"`
	Approaching bool    `json:"approaching"`
}

// IndicatorFor returns the reminder indicator for occ, or false when no
// indicator applies: no reminder set, reminder time before midnight,
// task already started, or task completed.
func (c Config) IndicatorFor(occ task.Occurrence, now clock.Minutes) (Indicator, bool) {
	if occ.IsCompleted || occ.ReminderMinutes == nil || *occ.ReminderMinutes <= 0 {
		return Indicator{}, false
	}
	start, _, err := occ.Span()
	if err != nil {
		return Indicator{}, false
	}
	reminderAt := start - clock.Minutes(*occ.ReminderMinutes)
	if reminderAt < 0 || start <= now {
		return Indicator{}, false
	}
	until := reminderAt - now
	return Indicator{
		InstanceID:  occ.InstanceID(),
		Y:           c.Y(reminderAt),
		Triggered:   now >= reminderAt,
		Approaching: until > 0 && until <= 15,
	}, true
}

// Indicators returns reminder indicators for every qualifying
// occurrence, in the order given.
func (c Config) Indicators(occs []task.Occurrence, now clock.Minutes) []Indicator {
	var out []Indicator
	for _, occ := range occs {
		if ind, ok := c.IndicatorFor(occ, now); ok {
			out = append(out, ind)
		}
	}
	return out
}

// LineState grades a countdown line by how close the reminder is.
type LineState string

const (
	LineImminent    LineState = "imminent"
	LineApproaching LineState = "approaching"
	LineDistant     LineState = "distant"
)

// Line is a countdown line from a pending reminder up to its task.
type Line struct {
	InstanceID string    `json:"instanceId"`
	X          float64   `json:"x"`
	Y1         float64   `json:"y1"`
	Y2         float64   `json:"y2"`
	State      LineState `json:"state"`
}

// LineFor returns the countdown line for occ, or false when none is
// drawn. Lines exist only for uncompleted tasks with a reminder that
// is still pending and due within the next hour. The line runs from
// the reminder time up to the task start.
func (c Config) LineFor(occ task.Occurrence, now clock.Minutes) (Line, bool) {
	if occ.IsCompleted || occ.ReminderMinutes == nil || *occ.ReminderMinutes <= 0 {
		return Line{}, false
	}
	start, _, err := occ.Span()
	if err != nil {
		return Line{}, false
	}
	reminderAt := start - clock.Minutes(*occ.ReminderMinutes)
	until := reminderAt - now
	if until <= 0 || until > 60 {
		return Line{}, false
	}
	// Reminder before midnight has no position on the timeline.
	if reminderAt < 0 {
		return Line{}, false
	}
	state := LineDistant
	switch {
	case until <= 5:
		state = LineImminent
	case until <= 15:
		state = LineApproaching
	}
	return Line{
		InstanceID: occ.InstanceID(),
		X:          ReminderLineX,
		Y1:         c.Y(reminderAt),
		Y2:         c.Y(start),
		State:      state,
	}, true
}

// Lines returns countdown lines for every qualifying occurrence, in the
// order given.
func (c Config) Lines(occs []task.Occurrence, now clock.Minutes) []Line {
	var out []Line
	for _, occ := range occs {
		if line, ok := c.LineFor(occ, now); ok {
			out = append(out, line)
		}
	}
	return out
}
