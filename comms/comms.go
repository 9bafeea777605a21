// Package comms provides the in-process event bus connecting the core
// to whichever shell renders it. The core emits typed events; a UI
// layer (web, terminal, tests) subscribes without the core knowing
// anything about rendering.
package comms

import (
	"context"
	"time"
)

// Topic identifies the kind of core event.
type Topic string

const (
	// TopicTaskListChanged fires after any reload of the displayed
	// day's task list; subscribers re-render from the carried snapshot.
	TopicTaskListChanged Topic = "task-list-changed"

	// TopicReminderFired fires when a scheduled reminder triggers.
	TopicReminderFired Topic = "reminder-fired"

	// TopicCrossTabNotice carries user-facing notices about concurrent
	// edits in other instances (toast material, never authoritative data).
	TopicCrossTabNotice Topic = "cross-tab-notice"

	// TopicDateChanged fires when the displayed date moves.
	TopicDateChanged Topic = "date-changed"

	// TopicAll subscribes to every event; used by the SSE hub.
	TopicAll Topic = "*"
)

// Severity grades a notice for toast styling.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one core-to-shell notification.
type Event struct {
	Topic     Topic     `json:"topic"`
	TaskID    string    `json:"taskId,omitempty"`
	Message   string    `json:"message,omitempty"`
	Severity  Severity  `json:"severity,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler processes published events.
type Handler func(ctx context.Context, ev Event) error

// Bus is the event backbone between the core and its shells.
type Bus interface {
	// Publish delivers ev to all subscribers of its topic and of
	// TopicAll. Handler errors are collected, not fatal.
	Publish(ctx context.Context, ev Event) error

	// Subscribe registers a handler for one topic. The returned
	// function unsubscribes it.
	Subscribe(topic Topic, handler Handler) (unsubscribe func())

	// History returns up to limit recent events on topic, oldest first.
	History(topic Topic, limit int) []Event
}
