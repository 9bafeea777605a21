// Package app wires the core together: store, event bus, reminder
// scheduler, and cross-instance sync, behind the operations a shell
// calls. It owns the single State snapshot every renderer reads.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/timeflowapp/timeflow/broadcast"
	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/comms"
	"github.com/timeflowapp/timeflow/notify"
	"github.com/timeflowapp/timeflow/task"
)

const maxTitleSuggestions = 5

// App coordinates the core packages. All mutating operations funnel
// through it so every save or delete updates the store, the schedule,
// other instances, and the local state in one place.
type App struct {
	store     task.Store
	bus       comms.Bus
	scheduler *notify.Scheduler
	syncer    *broadcast.Syncer
	state     *Container
	logger    *slog.Logger
	now       func() time.Time
}

// New assembles an App. notifier receives fired reminders; now is the
// clock source, nil meaning time.Now.
func New(store task.Store, bus comms.Bus, channel broadcast.Channel, notifier notify.Notifier, logger *slog.Logger, now func() time.Time) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	a := &App{
		store:  store,
		bus:    bus,
		state:  NewContainer(),
		logger: logger,
		now:    now,
	}
	a.scheduler = notify.NewScheduler(notifier, func() bool {
		return a.state.Get().Settings.NotificationsEnabled
	}, logger)

	a.syncer = broadcast.NewSyncer(channel, bus, logger)
	a.syncer.OnReload = func(ctx context.Context) {
		if err := a.Reload(ctx); err != nil {
			a.logger.Warn("reload after remote change failed", "error", err)
		}
	}
	a.syncer.EditingID = func() string { return a.state.Get().EditingID }
	a.syncer.CloseEditor = a.CloseEditor
	return a
}

// State exposes the snapshot container for shells to read and watch.
func (a *App) State() *Container { return a.state }

// Scheduler exposes the reminder scheduler so the host can run its
// polling loop.
func (a *App) Scheduler() *notify.Scheduler { return a.scheduler }

// Init loads settings and today's tasks. Call once before serving.
func (a *App) Init(ctx context.Context) error {
	settings, err := a.store.Settings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	a.state.Update(func(s *State) { s.Settings = settings })
	return a.LoadDate(ctx, clock.DateOf(a.now()))
}

// LoadDate makes d the displayed date: reads its occurrences from the
// store, sorts them by start time, refreshes the reminder schedule for
// wall-clock today, and announces the change on the bus.
func (a *App) LoadDate(ctx context.Context, d clock.Date) error {
	occs, err := a.store.TasksByDate(d)
	if err != nil {
		return fmt.Errorf("load tasks for %s: %w", d, err)
	}
	sortOccurrences(occs)

	var prev clock.Date
	a.state.Update(func(s *State) {
		prev = s.CurrentDate
		s.CurrentDate = d
		s.Tasks = occs
	})

	a.rebuildSchedule(occs, d)

	if prev != d && !prev.IsZero() {
		a.publish(ctx, comms.Event{Topic: comms.TopicDateChanged, Payload: d.String()})
	}
	a.publish(ctx, comms.Event{Topic: comms.TopicTaskListChanged, Payload: occs})
	return nil
}

// Reload re-reads the displayed date from the store.
func (a *App) Reload(ctx context.Context) error {
	return a.LoadDate(ctx, a.state.Get().CurrentDate)
}

// NavigateDay moves the displayed date by delta days.
func (a *App) NavigateDay(ctx context.Context, delta int) error {
	return a.LoadDate(ctx, a.state.Get().CurrentDate.AddDays(delta))
}

// GoToToday jumps the displayed date back to today.
func (a *App) GoToToday(ctx context.Context) error {
	return a.LoadDate(ctx, clock.DateOf(a.now()))
}

// SaveTask validates and persists t, tells other instances, and
// reloads the displayed date. A new task gets its id assigned in place.
func (a *App) SaveTask(ctx context.Context, t *task.Task) error {
	if err := a.store.SaveTask(t); err != nil {
		return err
	}
	a.syncer.NotifySaved(ctx, t.ID)
	return a.Reload(ctx)
}

// DeleteTask removes a task. Deleting a virtual occurrence deletes the
// underlying recurring task, taking every occurrence with it. Deleting
// the task open in the editor closes the editor.
func (a *App) DeleteTask(ctx context.Context, instanceID string) error {
	target := instanceID
	if occ, ok := a.findOccurrence(instanceID); ok && occ.Virtual {
		target = occ.OriginalID
	}
	if err := a.store.DeleteTask(target); err != nil {
		return err
	}
	a.syncer.NotifyDeleted(ctx, target)
	if editing := a.state.Get().EditingID; editing == instanceID || editing == target {
		a.CloseEditor()
	}
	return a.Reload(ctx)
}

// ToggleComplete flips a task's completion flag. Toggling a virtual
// occurrence forks it into a standalone task for that date first, so
// the recurring task's other days are untouched.
func (a *App) ToggleComplete(ctx context.Context, instanceID string) error {
	if occ, ok := a.findOccurrence(instanceID); ok && occ.Virtual {
		forked := a.ForkOccurrence(occ)
		forked.IsCompleted = !occ.IsCompleted
		return a.SaveTask(ctx, &forked)
	}

	t, err := a.store.Task(instanceID)
	if err != nil {
		return err
	}
	t.IsCompleted = !t.IsCompleted
	return a.SaveTask(ctx, t)
}

// ForkOccurrence turns a virtual occurrence into a draft standalone
// task for its date: fresh id, no recurrence, timestamps reset. The
// lineage back to the recurring task is kept so the store stops
// projecting a virtual occurrence onto this date once the fork is
// saved. The draft is not saved.
func (a *App) ForkOccurrence(occ task.Occurrence) task.Task {
	t := occ.Task
	t.ID = ""
	t.Recurring = task.RecurNone
	t.ForkedFrom = occ.OriginalID
	t.CreatedAt = time.Time{}
	t.UpdatedAt = time.Time{}
	return t
}

// OriginalTask resolves the real stored task behind an occurrence,
// following a virtual occurrence back to its recurring original. Used
// for "edit all occurrences".
func (a *App) OriginalTask(instanceID string) (*task.Task, error) {
	id := instanceID
	if occ, ok := a.findOccurrence(instanceID); ok && occ.Virtual {
		id = occ.OriginalID
	}
	return a.store.Task(id)
}

// OpenEditor marks a task as being edited and tells other instances.
func (a *App) OpenEditor(ctx context.Context, instanceID string) {
	a.state.Update(func(s *State) { s.EditingID = instanceID })
	a.syncer.NotifyEditing(ctx, instanceID)
}

// CloseEditor clears the editing mark.
func (a *App) CloseEditor() {
	a.state.Update(func(s *State) { s.EditingID = "" })
}

// UpdateSetting persists one setting and updates the snapshot.
func (a *App) UpdateSetting(ctx context.Context, key string, value any) error {
	if err := a.store.SetSetting(key, value); err != nil {
		return err
	}
	settings, err := a.store.Settings()
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	a.state.Update(func(s *State) { s.Settings = settings })
	return nil
}

// SuggestTitles returns up to five past task titles matching query.
func (a *App) SuggestTitles(query string) ([]string, error) {
	titles, err := a.store.TaskTitles()
	if err != nil {
		return nil, err
	}
	return task.SuggestTitles(titles, query, maxTitleSuggestions), nil
}

// ShareFragment builds the deep-link fragment for the displayed date.
func (a *App) ShareFragment() string {
	return Fragment(a.state.Get().CurrentDate, clock.DateOf(a.now()))
}

// rebuildSchedule refreshes the reminder schedule for wall-clock
// today. The schedule never follows the displayed date: when another
// date is shown, today's occurrences are fetched separately so
// navigation cannot wipe pending reminders. displayed is the date occs
// belongs to.
func (a *App) rebuildSchedule(occs []task.Occurrence, displayed clock.Date) {
	now := a.now()
	today := clock.DateOf(now)
	if displayed != today {
		var err error
		occs, err = a.store.TasksByDate(today)
		if err != nil {
			a.logger.Warn("reminder schedule refresh failed", "date", today, "error", err)
			return
		}
	}
	a.scheduler.Rebuild(today, occs, clock.NowMinutes(now))
}

func (a *App) findOccurrence(instanceID string) (task.Occurrence, bool) {
	for _, occ := range a.state.Get().Tasks {
		if occ.InstanceID() == instanceID {
			return occ, true
		}
	}
	return task.Occurrence{}, false
}

func (a *App) publish(ctx context.Context, ev comms.Event) {
	if err := a.bus.Publish(ctx, ev); err != nil {
		a.logger.Warn("event publish failed", "topic", ev.Topic, "error", err)
	}
}

func sortOccurrences(occs []task.Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		si, _, ei := occs[i].Span()
		sj, _, ej := occs[j].Span()
		if ei != nil || ej != nil {
			return ei == nil
		}
		if si != sj {
			return si < sj
		}
		return occs[i].Title < occs[j].Title
	})
}
