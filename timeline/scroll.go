package timeline

import (
	"math"
	"time"

	"github.com/timeflowapp/timeflow/clock"
)

const (
	// DefaultPause is how long auto-scroll stays off after the user
	// scrolls manually.
	DefaultPause = 5 * time.Second

	// jumpThreshold is how far the view must drift from the target
	// before the jump-to-now affordance shows.
	jumpThreshold = 200.0

	// scrollDeadband stops micro-adjustments when the view is close
	// enough to the target.
	scrollDeadband = 5.0
)

// AutoScroller drifts the viewport so the current time stays visible,
// one gentle pixel at a time, yielding to the user whenever they scroll
// themselves.
type AutoScroller struct {
	Config   Config
	Viewport float64
	Offset   float64

	pausedUntil time.Time
}

// Target is the offset that puts the now line 70% down the viewport,
// never above the top of the day.
func (s *AutoScroller) Target(now clock.Minutes) float64 {
	t := s.Config.NowLineY(now) - s.Viewport*0.7
	if t < 0 {
		return 0
	}
	return t
}

// Step advances the offset one tick toward the target. Steps are at
// most one pixel; moves within the deadband are skipped entirely.
func (s *AutoScroller) Step(now clock.Minutes, at time.Time) float64 {
	if at.Before(s.pausedUntil) {
		return s.Offset
	}
	diff := s.Target(now) - s.Offset
	if math.Abs(diff) <= scrollDeadband {
		return s.Offset
	}
	step := math.Copysign(math.Min(1, math.Abs(diff)/10), diff)
	s.Offset += step
	return s.Offset
}

// Pause suspends auto-scroll for d (DefaultPause when d <= 0). A later
// Pause extends the window; an earlier one never shortens it.
func (s *AutoScroller) Pause(at time.Time, d time.Duration) {
	if d <= 0 {
		d = DefaultPause
	}
	until := at.Add(d)
	if until.After(s.pausedUntil) {
		s.pausedUntil = until
	}
}

// ShowJump reports whether the view has drifted far enough from the
// current time to offer a jump-to-now control.
func (s *AutoScroller) ShowJump(now clock.Minutes) bool {
	return math.Abs(s.Offset-s.Target(now)) > jumpThreshold
}

// JumpToNow snaps the offset straight to the target.
func (s *AutoScroller) JumpToNow(now clock.Minutes) float64 {
	s.Offset = s.Target(now)
	return s.Offset
}
