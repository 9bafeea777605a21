package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
)

func occ(id, start, end string) task.Occurrence {
	return task.Occurrence{Task: task.Task{
		ID:        id,
		Title:     id,
		StartTime: start,
		EndTime:   end,
		Date:      clock.Date{Year: 2026, Month: 9, Day: 1},
	}}
}

func TestClampDensity(t *testing.T) {
	assert.Equal(t, 1.0, ClampDensity(0), "unset density defaults to 1")
	assert.Equal(t, 0.5, ClampDensity(0.1))
	assert.Equal(t, 2.0, ClampDensity(7))
	assert.Equal(t, 1.5, ClampDensity(1.5))
}

func TestCardGeometry(t *testing.T) {
	cfg := DefaultConfig()

	card, err := cfg.CardFor(occ("t1", "09:00", "10:30"), 0)
	require.NoError(t, err)
	assert.Equal(t, 720.0, card.Top, "09:00 at 80px/hour")
	assert.Equal(t, 112.0, card.Height, "90min minus gutter")

	short, err := cfg.CardFor(occ("t2", "09:00", "09:15"), 0)
	require.NoError(t, err)
	assert.Equal(t, MinCardHeight, short.Height, "short tasks clamp to minimum")
}

func TestCardGeometryScalesWithDensity(t *testing.T) {
	cfg := Config{HourHeight: BaseHourHeight, Density: 2}

	card, err := cfg.CardFor(occ("t1", "06:00", "07:00"), 0)
	require.NoError(t, err)
	assert.Equal(t, 960.0, card.Top)
	assert.Equal(t, 152.0, card.Height)
}

func TestStatusOf(t *testing.T) {
	o := occ("t1", "09:00", "10:00")

	assert.Equal(t, StatusUpcoming, StatusOf(o, 8*60+59))
	assert.Equal(t, StatusCurrent, StatusOf(o, 9*60), "current from the first minute")
	assert.Equal(t, StatusCurrent, StatusOf(o, 9*60+59))
	assert.Equal(t, StatusPast, StatusOf(o, 10*60), "past at the end minute")

	done := o
	done.IsCompleted = true
	assert.Equal(t, StatusCompleted, StatusOf(done, 9*60+30), "completed wins over current")
}

func TestLayoutOrdersByStartTime(t *testing.T) {
	cfg := DefaultConfig()
	cards := cfg.Layout([]task.Occurrence{
		occ("late", "14:00", "15:00"),
		occ("early", "08:00", "09:00"),
		occ("mid", "11:00", "12:00"),
	}, 0)

	require.Len(t, cards, 3)
	assert.Equal(t, "early", cards[0].InstanceID)
	assert.Equal(t, "mid", cards[1].InstanceID)
	assert.Equal(t, "late", cards[2].InstanceID)
	assert.Less(t, cards[0].Top, cards[1].Top)
	assert.Less(t, cards[1].Top, cards[2].Top)
	assert.Less(t, cards[0].Top+cards[0].Height, cards[1].Top,
		"disjoint time ranges occupy disjoint pixel regions")
	assert.Less(t, cards[1].Top+cards[1].Height, cards[2].Top)
}

func TestLayoutSkipsUnparseableTimes(t *testing.T) {
	cfg := DefaultConfig()
	bad := occ("bad", "9:00", "10:00")
	cards := cfg.Layout([]task.Occurrence{bad, occ("good", "10:00", "11:00")}, 0)
	require.Len(t, cards, 1)
	assert.Equal(t, "good", cards[0].InstanceID)
}

func TestIndicatorSuppression(t *testing.T) {
	cfg := DefaultConfig()
	r := 15
	base := occ("t1", "09:00", "10:00")
	base.ReminderMinutes = &r

	_, ok := cfg.IndicatorFor(occ("t2", "09:00", "10:00"), 8*60)
	assert.False(t, ok, "no reminder set")

	ind, ok := cfg.IndicatorFor(base, 8*60)
	require.True(t, ok)
	assert.Equal(t, cfg.Y(8*60+45), ind.Y)
	assert.False(t, ind.Triggered)
	assert.False(t, ind.Approaching)

	ind, ok = cfg.IndicatorFor(base, 8*60+35)
	require.True(t, ok)
	assert.True(t, ind.Approaching, "within 15 minutes of the reminder time")
	assert.False(t, ind.Triggered)

	ind, ok = cfg.IndicatorFor(base, 8*60+50)
	require.True(t, ok)
	assert.True(t, ind.Triggered, "triggered once past the reminder time")
	assert.False(t, ind.Approaching)

	_, ok = cfg.IndicatorFor(base, 9*60)
	assert.False(t, ok, "suppressed once the task has started")

	done := base
	done.IsCompleted = true
	_, ok = cfg.IndicatorFor(done, 8*60)
	assert.False(t, ok, "suppressed when completed")

	early := base
	early.StartTime = "00:10"
	early.EndTime = "01:00"
	_, ok = cfg.IndicatorFor(early, 0)
	assert.False(t, ok, "suppressed when the reminder time is before midnight")
}

func TestLineWindowAndStates(t *testing.T) {
	cfg := DefaultConfig()
	r := 30
	o := occ("t1", "10:00", "11:00")
	o.ReminderMinutes = &r
	// Reminder fires at 09:30.

	_, ok := cfg.LineFor(occ("t2", "10:00", "11:00"), 9*60+30)
	assert.False(t, ok, "no line without a reminder")

	_, ok = cfg.LineFor(o, 8*60+29)
	assert.False(t, ok, "reminder more than an hour out")

	line, ok := cfg.LineFor(o, 8*60+31)
	require.True(t, ok)
	assert.Equal(t, LineDistant, line.State)
	assert.Equal(t, ReminderLineX, line.X)
	assert.Equal(t, cfg.Y(9*60+30), line.Y1, "line anchors at the reminder time")
	assert.Equal(t, cfg.Y(10*60), line.Y2)

	line, ok = cfg.LineFor(o, 9*60+20)
	require.True(t, ok)
	assert.Equal(t, LineApproaching, line.State, "ten minutes until the reminder")
	assert.InDelta(t, 760.0, line.Y1, 1e-9)

	line, _ = cfg.LineFor(o, 9*60+26)
	assert.Equal(t, LineImminent, line.State)

	_, ok = cfg.LineFor(o, 9*60+30)
	assert.False(t, ok, "no line once the reminder has fired")

	done := o
	done.IsCompleted = true
	_, ok = cfg.LineFor(done, 9*60)
	assert.False(t, ok, "no line for completed tasks")

	early := o
	early.StartTime = "00:10"
	early.EndTime = "01:00"
	_, ok = cfg.LineFor(early, 0)
	assert.False(t, ok, "no line when the reminder time is before midnight")
}

func TestAutoScrollerStep(t *testing.T) {
	s := &AutoScroller{Config: DefaultConfig(), Viewport: 600}
	now := clock.Minutes(12 * 60)
	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	target := s.Target(now)
	assert.Equal(t, 12*80.0-0.7*600, target)

	// Far away: full one-pixel steps toward the target.
	s.Offset = target - 100
	got := s.Step(now, at)
	assert.Equal(t, target-99, got)

	// Close in: fractional step.
	s.Offset = target - 8
	got = s.Step(now, at)
	assert.InDelta(t, target-7.2, got, 1e-9)

	// Inside the deadband: no movement.
	s.Offset = target - 4
	assert.Equal(t, target-4, s.Step(now, at))
}

func TestAutoScrollerTargetNeverNegative(t *testing.T) {
	s := &AutoScroller{Config: DefaultConfig(), Viewport: 600}
	assert.Equal(t, 0.0, s.Target(0), "early morning clamps to the top")
}

func TestAutoScrollerPause(t *testing.T) {
	s := &AutoScroller{Config: DefaultConfig(), Viewport: 600}
	now := clock.Minutes(12 * 60)
	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s.Offset = 0
	s.Pause(at, 0)
	assert.Equal(t, 0.0, s.Step(now, at.Add(time.Second)), "paused")
	assert.NotEqual(t, 0.0, s.Step(now, at.Add(6*time.Second)), "resumed after the pause")

	// A longer pause is not shortened by a later shorter one.
	s.Pause(at, time.Minute)
	s.Pause(at.Add(time.Second), time.Second)
	assert.Equal(t, s.Offset, s.Step(now, at.Add(30*time.Second)))
}

func TestAutoScrollerJump(t *testing.T) {
	s := &AutoScroller{Config: DefaultConfig(), Viewport: 600}
	now := clock.Minutes(12 * 60)

	s.Offset = s.Target(now)
	assert.False(t, s.ShowJump(now))

	s.Offset = s.Target(now) + 250
	assert.True(t, s.ShowJump(now))

	s.JumpToNow(now)
	assert.Equal(t, s.Target(now), s.Offset)
	assert.False(t, s.ShowJump(now))
}
