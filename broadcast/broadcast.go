// Package broadcast keeps concurrently running app instances loosely in
// sync. Each mutation publishes a small message naming the task and the
// action; every other instance reacts by reloading from the store, which
// stays the single source of truth. Messages are advisory and may be
// lost without corrupting state.
package broadcast

import (
	"context"
	"time"
)

// Action names what happened to a task in some instance.
type Action string

const (
	ActionSaved   Action = "saved"
	ActionDeleted Action = "deleted"
	ActionEditing Action = "editing"
)

// Message is one cross-instance notification.
type Message struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"taskId"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}

// MessageType is the only Type value ever sent; receivers drop anything
// else so the journal format can grow later.
const MessageType = "task-update"

// Receiver handles messages arriving from other instances.
type Receiver func(ctx context.Context, msg Message)

// Channel is a many-to-many message pipe between app instances.
type Channel interface {
	// Send publishes msg to every other instance on the channel.
	Send(ctx context.Context, msg Message) error

	// Receive registers fn for incoming messages. The sender's own
	// messages are delivered too; filtering by SenderID is the
	// subscriber's job.
	Receive(fn Receiver)

	// Close releases the channel. Further Sends fail.
	Close() error
}
