// Package timeline computes the geometry of the day view: card
// positions, the now line, reminder indicators, and auto-scroll. All
// outputs are plain pixel values so any renderer can draw them.
package timeline

import (
	"sort"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
)

const (
	// BaseHourHeight is the unscaled height of one hour in pixels.
	BaseHourHeight = 80.0

	// CardGutter is subtracted from card heights so adjacent cards
	// do not touch.
	CardGutter = 8.0

	// MinCardHeight keeps very short tasks clickable.
	MinCardHeight = 40.0

	// MinDensity and MaxDensity bound the user's density setting.
	MinDensity = 0.5
	MaxDensity = 2.0
)

// Config holds the scaling knobs for one rendered timeline.
type Config struct {
	HourHeight float64
	Density    float64
}

// DefaultConfig returns the standard scale at normal density.
func DefaultConfig() Config {
	return Config{HourHeight: BaseHourHeight, Density: 1}
}

// ClampDensity forces d into the supported range; zero and negative
// values (an unset setting) become 1.
func ClampDensity(d float64) float64 {
	if d <= 0 {
		return 1
	}
	if d < MinDensity {
		return MinDensity
	}
	if d > MaxDensity {
		return MaxDensity
	}
	return d
}

// pixelsPerHour is the effective vertical scale.
func (c Config) pixelsPerHour() float64 {
	h := c.HourHeight
	if h <= 0 {
		h = BaseHourHeight
	}
	return h * ClampDensity(c.Density)
}

// Y converts a time of day to a vertical pixel position.
func (c Config) Y(m clock.Minutes) float64 {
	return float64(m) / 60 * c.pixelsPerHour()
}

// Height converts a duration in minutes to a pixel height.
func (c Config) Height(mins clock.Minutes) float64 {
	return float64(mins) / 60 * c.pixelsPerHour()
}

// Status is a card's temporal state relative to now.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCurrent   Status = "current"
	StatusPast      Status = "past"
	StatusCompleted Status = "completed"
)

// StatusOf classifies an occurrence. Completed wins over everything; a
// task is current from its start up to but excluding its end.
func StatusOf(occ task.Occurrence, now clock.Minutes) Status {
	if occ.IsCompleted {
		return StatusCompleted
	}
	start, end, err := occ.Span()
	if err != nil {
		return StatusUpcoming
	}
	switch {
	case now >= start && now < end:
		return StatusCurrent
	case now >= end:
		return StatusPast
	default:
		return StatusUpcoming
	}
}

// Card is one positioned task on the timeline.
type Card struct {
	InstanceID string  `json:"instanceId"`
	Top        float64 `json:"top"`
	Height     float64 `json:"height"`
	Status     Status  `json:"status"`
}

// CardFor lays out a single occurrence.
func (c Config) CardFor(occ task.Occurrence, now clock.Minutes) (Card, error) {
	start, end, err := occ.Span()
	if err != nil {
		return Card{}, err
	}
	height := c.Height(end-start) - CardGutter
	if height < MinCardHeight {
		height = MinCardHeight
	}
	return Card{
		InstanceID: occ.InstanceID(),
		Top:        c.Y(start),
		Height:     height,
		Status:     StatusOf(occ, now),
	}, nil
}

// Layout positions every parseable occurrence, sorted by start time
// then title for a stable order. Occurrences with invalid times are
// skipped.
func (c Config) Layout(occs []task.Occurrence, now clock.Minutes) []Card {
	type timed struct {
		card  Card
		start clock.Minutes
		title string
	}
	items := make([]timed, 0, len(occs))
	for _, occ := range occs {
		card, err := c.CardFor(occ, now)
		if err != nil {
			continue
		}
		start, _, _ := occ.Span()
		items = append(items, timed{card: card, start: start, title: occ.Title})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].start != items[j].start {
			return items[i].start < items[j].start
		}
		return items[i].title < items[j].title
	})
	cards := make([]Card, len(items))
	for i, it := range items {
		cards[i] = it.card
	}
	return cards
}

// NowLineY is the vertical position of the current-time line.
func (c Config) NowLineY(now clock.Minutes) float64 {
	return c.Y(now)
}
