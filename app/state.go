package app

import (
	"sync"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
)

// State is the full UI-facing snapshot: the displayed date, its
// occurrences, settings, and which task the editor has open.
type State struct {
	CurrentDate clock.Date
	Tasks       []task.Occurrence
	Settings    task.Settings
	EditingID   string
}

// Container holds State behind a lock and fans out change
// notifications. Updates replace fields wholesale; subscribers receive
// the complete new snapshot and re-render from it.
type Container struct {
	mu       sync.RWMutex
	state    State
	watchers []func(State)
}

func NewContainer() *Container {
	return &Container{}
}

// Get returns a copy of the current snapshot. The Tasks slice is shared
// with the container; callers must not mutate it.
func (c *Container) Get() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Update applies fn to the state under the lock, then notifies every
// watcher with the new snapshot.
func (c *Container) Update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	next := c.state
	watchers := make([]func(State), len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	for _, w := range watchers {
		w(next)
	}
}

// Watch registers fn to run after every update.
func (c *Container) Watch(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}
