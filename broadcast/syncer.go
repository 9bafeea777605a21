package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/timeflowapp/timeflow/comms"
)

// Syncer ties one app instance to a Channel. Outgoing mutations become
// messages; incoming messages from other instances trigger a reload and,
// when they collide with a task the user has open, a notice on the bus.
type Syncer struct {
	senderID string
	channel  Channel
	bus      comms.Bus
	logger   *slog.Logger

	// OnReload re-reads the displayed day from the store. Called for
	// saved and deleted messages from other instances.
	OnReload func(ctx context.Context)

	// EditingID reports the task currently open in the editor, or "".
	EditingID func() string

	// CloseEditor force-closes the editor after its task was deleted
	// elsewhere.
	CloseEditor func()
}

func NewSyncer(channel Channel, bus comms.Bus, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		senderID: uuid.NewString(),
		channel:  channel,
		bus:      bus,
		logger:   logger,
	}
	channel.Receive(s.handle)
	return s
}

// SenderID identifies this instance on the channel.
func (s *Syncer) SenderID() string { return s.senderID }

func (s *Syncer) NotifySaved(ctx context.Context, taskID string) {
	s.send(ctx, taskID, ActionSaved)
}

func (s *Syncer) NotifyDeleted(ctx context.Context, taskID string) {
	s.send(ctx, taskID, ActionDeleted)
}

func (s *Syncer) NotifyEditing(ctx context.Context, taskID string) {
	s.send(ctx, taskID, ActionEditing)
}

func (s *Syncer) send(ctx context.Context, taskID string, action Action) {
	msg := Message{
		Type:      MessageType,
		TaskID:    taskID,
		Action:    action,
		Timestamp: time.Now(),
		SenderID:  s.senderID,
	}
	if err := s.channel.Send(ctx, msg); err != nil {
		// Sync is advisory; the local mutation already succeeded.
		s.logger.Warn("cross-instance notify failed", "action", action, "taskId", taskID, "error", err)
	}
}

func (s *Syncer) handle(ctx context.Context, msg Message) {
	if msg.SenderID == s.senderID || msg.Type != MessageType {
		return
	}

	editing := ""
	if s.EditingID != nil {
		editing = s.EditingID()
	}

	switch msg.Action {
	case ActionDeleted:
		if editing != "" && editing == msg.TaskID {
			if s.CloseEditor != nil {
				s.CloseEditor()
			}
			s.notice(ctx, msg.TaskID, comms.SeverityWarning,
				"This task was deleted in another window")
		}
		s.reload(ctx)
	case ActionSaved:
		if editing != "" && editing == msg.TaskID {
			s.notice(ctx, msg.TaskID, comms.SeverityWarning,
				"This task was changed in another window")
		}
		s.reload(ctx)
	case ActionEditing:
		if editing != "" && editing == msg.TaskID {
			s.notice(ctx, msg.TaskID, comms.SeverityInfo,
				"This task is being edited in another window")
		}
	default:
		s.logger.Debug("ignoring unknown sync action", "action", msg.Action)
	}
}

func (s *Syncer) reload(ctx context.Context) {
	if s.OnReload != nil {
		s.OnReload(ctx)
	}
}

func (s *Syncer) notice(ctx context.Context, taskID string, sev comms.Severity, text string) {
	if s.bus == nil {
		return
	}
	ev := comms.Event{
		Topic:    comms.TopicCrossTabNotice,
		TaskID:   taskID,
		Message:  text,
		Severity: sev,
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("cross-tab notice publish failed", "error", err)
	}
}
