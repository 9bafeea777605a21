// Package notify fires task reminders. A Scheduler tracks pending
// reminder entries for the current day and hands due ones to a
// Notifier; entries fire exactly once per day per occurrence.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/comms"
)

// Entry is one pending reminder.
type Entry struct {
	TaskID    string
	Title     string
	StartTime clock.Minutes
	At        clock.Minutes
	Triggered bool
}

// Notifier delivers a fired reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, e Entry) error
}

// BusNotifier publishes fired reminders as bus events so any attached
// shell can surface them.
type BusNotifier struct {
	Bus comms.Bus
}

func (n BusNotifier) Notify(ctx context.Context, e Entry) error {
	return n.Bus.Publish(ctx, comms.Event{
		Topic:    comms.TopicReminderFired,
		TaskID:   e.TaskID,
		Message:  fmt.Sprintf("%s starts at %s", e.Title, clock.FormatTime(e.StartTime)),
		Severity: comms.SeverityInfo,
	})
}

// CommandNotifier shells out to notify-send for a desktop notification.
// When the binary is absent it is a silent no-op so headless deployments
// need no special casing.
type CommandNotifier struct {
	Logger *slog.Logger
}

func (n CommandNotifier) Notify(ctx context.Context, e Entry) error {
	bin, err := exec.LookPath("notify-send")
	if err != nil {
		return nil
	}
	body := fmt.Sprintf("%s starts at %s", e.Title, clock.FormatTime(e.StartTime))
	cmd := exec.CommandContext(ctx, bin, "TimeFlow", body)
	if err := cmd.Run(); err != nil {
		if n.Logger != nil {
			n.Logger.Warn("desktop notification failed", "taskId", e.TaskID, "error", err)
		}
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

// MultiNotifier fans a reminder out to several notifiers; the first
// error wins but every notifier still runs.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, e Entry) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
