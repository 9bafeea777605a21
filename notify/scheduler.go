package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
)

// DefaultCheckInterval is how often Run polls for due reminders.
const DefaultCheckInterval = 10 * time.Second

// Scheduler holds today's reminder entries and fires each at most
// once. Entries are keyed by occurrence instance id, so a recurring
// task reminds again on its next occurrence day. The schedule always
// tracks the wall-clock day, never the date a shell happens to
// display.
type Scheduler struct {
	notifier Notifier
	enabled  func() bool
	logger   *slog.Logger

	mu      sync.Mutex
	date    clock.Date
	entries map[string]Entry
	fired   map[string]bool
}

// NewScheduler builds a scheduler. enabled is read live on every check
// so a settings toggle takes effect without rescheduling; nil means
// always enabled.
func NewScheduler(notifier Notifier, enabled func() bool, logger *slog.Logger) *Scheduler {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		notifier: notifier,
		enabled:  enabled,
		logger:   logger,
		entries:  make(map[string]Entry),
		fired:    make(map[string]bool),
	}
}

// Rebuild replaces the schedule with entries for today's occurrences.
// today must be the wall-clock day. Fired state survives rebuilds
// within the same day, so an edit or a date navigation cannot re-fire
// reminders; it resets only when the calendar day rolls over.
// Reminder times already past at rebuild time are not scheduled.
func (s *Scheduler) Rebuild(today clock.Date, occs []task.Occurrence, now clock.Minutes) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if today != s.date {
		s.date = today
		s.fired = make(map[string]bool)
	}

	s.entries = make(map[string]Entry, len(occs))
	for _, occ := range occs {
		if e, ok := entryFor(occ, now); ok {
			s.entries[occ.InstanceID()] = e
		}
	}
}

// Upsert reschedules a single occurrence after a save. An occurrence
// that is no longer eligible (completed, reminder removed, reminder
// time already past) is dropped.
func (s *Scheduler) Upsert(occ task.Occurrence, now clock.Minutes) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := occ.InstanceID()
	if e, ok := entryFor(occ, now); ok {
		s.entries[key] = e
	} else {
		delete(s.entries, key)
	}
}

// Remove drops the entry for an occurrence instance id.
func (s *Scheduler) Remove(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, instanceID)
}

func entryFor(occ task.Occurrence, now clock.Minutes) (Entry, bool) {
	if occ.IsCompleted || occ.ReminderMinutes == nil || *occ.ReminderMinutes <= 0 {
		return Entry{}, false
	}
	start, _, err := occ.Span()
	if err != nil {
		return Entry{}, false
	}
	at := start - clock.Minutes(*occ.ReminderMinutes)
	if at <= now {
		return Entry{}, false
	}
	return Entry{
		TaskID:    occ.InstanceID(),
		Title:     occ.Title,
		StartTime: start,
		At:        at,
	}, true
}

// Check fires every due, unfired entry. A reminder is due from its
// reminder time until the task starts; once the task has started the
// window is gone. Disabled notifications skip firing but keep the
// schedule, so re-enabling resumes reminders still inside their window.
func (s *Scheduler) Check(ctx context.Context, now time.Time) {
	if !s.enabled() {
		return
	}

	nowMins := clock.NowMinutes(now)

	s.mu.Lock()
	var due []Entry
	for key, e := range s.entries {
		if s.fired[key] {
			continue
		}
		if nowMins >= e.At && nowMins < e.StartTime {
			s.fired[key] = true
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		if err := s.notifier.Notify(ctx, e); err != nil {
			s.logger.Warn("reminder delivery failed", "taskId", e.TaskID, "error", err)
		}
	}
}

// Run polls for due reminders until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.safeCheck(ctx, now)
		}
	}
}

func (s *Scheduler) safeCheck(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reminder check panicked", "panic", r)
		}
	}()
	s.Check(ctx, now)
}
