package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflowapp/timeflow/broadcast"
	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/comms"
	"github.com/timeflowapp/timeflow/notify"
	"github.com/timeflowapp/timeflow/task"
)

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local)

type nullNotifier struct{}

func (nullNotifier) Notify(context.Context, notify.Entry) error { return nil }

type fixture struct {
	app   *App
	store *task.SQLiteStore
	bus   *comms.InMemoryBus
	ch    *broadcast.MemoryChannel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := task.NewSQLiteStore(filepath.Join(t.TempDir(), "timeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bus := comms.NewInMemoryBus()
	ch := broadcast.NewMemoryChannel()
	a := New(store, bus, ch, nullNotifier{}, nil, func() time.Time { return testNow })
	require.NoError(t, a.Init(context.Background()))
	return &fixture{app: a, store: store, bus: bus, ch: ch}
}

func draft(title, start, end string, d clock.Date) task.Task {
	return task.Task{Title: title, StartTime: start, EndTime: end, Date: d}
}

func TestCreateReadDeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	standup := draft("Standup", "09:00", "09:30", today)
	require.NoError(t, f.app.SaveTask(ctx, &standup))
	require.NotEmpty(t, standup.ID, "save assigns an id")

	state := f.app.State().Get()
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Standup", state.Tasks[0].Title)
	assert.False(t, state.Tasks[0].Virtual)

	require.NoError(t, f.app.DeleteTask(ctx, standup.ID))
	assert.Empty(t, f.app.State().Get().Tasks)
}

func TestRecurringTaskVisibleOnLaterDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	gym := draft("Gym", "18:00", "19:00", today)
	gym.Recurring = task.RecurDaily
	require.NoError(t, f.app.SaveTask(ctx, &gym))

	// Today shows the real task.
	tasks := f.app.State().Get().Tasks
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Virtual)
	assert.Equal(t, gym.ID, tasks[0].InstanceID())

	// Three days out it appears as a virtual occurrence.
	require.NoError(t, f.app.NavigateDay(ctx, 3))
	tasks = f.app.State().Get().Tasks
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Virtual)
	assert.Equal(t, gym.ID, tasks[0].OriginalID)
	assert.Equal(t, gym.ID+"_"+today.AddDays(3).String(), tasks[0].InstanceID())
}

func TestLoadDateSortsByStartTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	for _, d := range []task.Task{
		draft("Late", "15:00", "16:00", today),
		draft("Early", "07:00", "08:00", today),
		draft("Mid", "11:00", "12:00", today),
	} {
		d := d
		require.NoError(t, f.app.SaveTask(ctx, &d))
	}

	tasks := f.app.State().Get().Tasks
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"Early", "Mid", "Late"},
		[]string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func TestSaveInvalidTaskLeavesStateAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := draft("", "09:00", "10:00", clock.DateOf(testNow))
	err := f.app.SaveTask(ctx, &bad)
	var verr *task.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.app.State().Get().Tasks)
}

func TestToggleCompleteOnVirtualForksStandaloneTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	gym := draft("Gym", "18:00", "19:00", today)
	gym.Recurring = task.RecurDaily
	require.NoError(t, f.app.SaveTask(ctx, &gym))
	require.NoError(t, f.app.NavigateDay(ctx, 1))

	virt := f.app.State().Get().Tasks[0]
	require.True(t, virt.Virtual)
	require.NoError(t, f.app.ToggleComplete(ctx, virt.InstanceID()))

	// The day now holds a real completed copy instead of the
	// projection; the recurring original is untouched.
	tasks := f.app.State().Get().Tasks
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Virtual)
	assert.True(t, tasks[0].IsCompleted)
	assert.Equal(t, task.RecurNone, tasks[0].Recurring)
	assert.NotEqual(t, gym.ID, tasks[0].ID)
	assert.Equal(t, gym.ID, tasks[0].ForkedFrom, "fork keeps its lineage")

	orig, err := f.store.Task(gym.ID)
	require.NoError(t, err)
	assert.False(t, orig.IsCompleted)
	assert.Equal(t, task.RecurDaily, orig.Recurring)
}

type countingNotifier struct {
	fired int
}

func (n *countingNotifier) Notify(context.Context, notify.Entry) error {
	n.fired++
	return nil
}

func TestNavigationKeepsTodaysReminderSchedule(t *testing.T) {
	ctx := context.Background()
	today := clock.DateOf(testNow)

	store, err := task.NewSQLiteStore(filepath.Join(t.TempDir(), "timeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec := &countingNotifier{}
	a := New(store, comms.NewInMemoryBus(), broadcast.NewMemoryChannel(), rec, nil,
		func() time.Time { return testNow })
	require.NoError(t, a.Init(ctx))

	standup := draft("Standup", "09:00", "09:30", today)
	reminder := 15
	standup.ReminderMinutes = &reminder
	require.NoError(t, a.SaveTask(ctx, &standup))

	a.Scheduler().Check(ctx, today.At(8*60+50))
	require.Equal(t, 1, rec.fired)

	// Viewing tomorrow and coming back must neither drop today's
	// schedule nor re-fire a delivered reminder.
	require.NoError(t, a.NavigateDay(ctx, 1))
	a.Scheduler().Check(ctx, today.At(8*60+51))
	require.NoError(t, a.NavigateDay(ctx, -1))
	a.Scheduler().Check(ctx, today.At(8*60+52))
	assert.Equal(t, 1, rec.fired, "reminder must fire exactly once per day")
}

func TestDeleteVirtualOccurrenceDeletesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	gym := draft("Gym", "18:00", "19:00", today)
	gym.Recurring = task.RecurDaily
	require.NoError(t, f.app.SaveTask(ctx, &gym))
	require.NoError(t, f.app.NavigateDay(ctx, 2))

	virt := f.app.State().Get().Tasks[0]
	require.NoError(t, f.app.DeleteTask(ctx, virt.InstanceID()))

	assert.Empty(t, f.app.State().Get().Tasks)
	_, err := f.store.Task(gym.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestRemoteSaveReloadsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	// Another instance on the same channel and store.
	other := New(f.store, comms.NewInMemoryBus(), f.ch, nullNotifier{}, nil,
		func() time.Time { return testNow })
	require.NoError(t, other.Init(ctx))

	review := draft("Review", "14:00", "15:00", today)
	require.NoError(t, other.SaveTask(ctx, &review))

	tasks := f.app.State().Get().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review", tasks[0].Title)
}

func TestRemoteDeleteClosesLocalEditor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	doc := draft("Write doc", "10:00", "11:00", today)
	require.NoError(t, f.app.SaveTask(ctx, &doc))

	other := New(f.store, comms.NewInMemoryBus(), f.ch, nullNotifier{}, nil,
		func() time.Time { return testNow })
	require.NoError(t, other.Init(ctx))

	f.app.OpenEditor(ctx, doc.ID)
	require.NoError(t, other.DeleteTask(ctx, doc.ID))

	assert.Empty(t, f.app.State().Get().EditingID)
	notices := f.bus.History(comms.TopicCrossTabNotice, 0)
	require.Len(t, notices, 1)
	assert.Equal(t, comms.SeverityWarning, notices[0].Severity)
}

func TestUpdateSettingPersistsAndRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "light", f.app.State().Get().Settings.Theme)
	require.NoError(t, f.app.UpdateSetting(ctx, task.SettingTheme, "dark"))
	assert.Equal(t, "dark", f.app.State().Get().Settings.Theme)

	require.NoError(t, f.app.UpdateSetting(ctx, task.SettingTimelineDensity, 1.5))
	assert.Equal(t, 1.5, f.app.State().Get().Settings.TimelineDensity)

	settings, err := f.store.Settings()
	require.NoError(t, err)
	assert.Equal(t, "dark", settings.Theme)
}

func TestSuggestTitles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := clock.DateOf(testNow)

	for _, title := range []string{"Standup", "Stand by me", "Lunch"} {
		d := draft(title, "09:00", "09:30", today)
		require.NoError(t, f.app.SaveTask(ctx, &d))
	}

	got, err := f.app.SuggestTitles("stand")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Standup", "Stand by me"}, got)

	got, err = f.app.SuggestTitles("s")
	require.NoError(t, err)
	assert.Empty(t, got, "queries under two characters suggest nothing")
}

func TestShareFragment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Empty(t, f.app.ShareFragment(), "today needs no fragment")

	require.NoError(t, f.app.NavigateDay(ctx, 1))
	assert.Equal(t, "#date=2026-09-02", f.app.ShareFragment())
}

func TestDateFromFragment(t *testing.T) {
	d, ok := DateFromFragment("#date=2026-09-05")
	require.True(t, ok)
	assert.Equal(t, clock.Date{Year: 2026, Month: 9, Day: 5}, d)

	_, ok = DateFromFragment("#view=week")
	assert.False(t, ok)
	_, ok = DateFromFragment("#date=tomorrow")
	assert.False(t, ok)

	d, ok = DateFromFragment("date=2026-09-05")
	require.True(t, ok, "leading hash is optional")
	assert.Equal(t, 5, d.Day)
}

func TestDateChangedEventOnNavigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.NavigateDay(ctx, 1))
	evs := f.bus.History(comms.TopicDateChanged, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, clock.DateOf(testNow).AddDays(1).String(), evs[0].Payload)
}
