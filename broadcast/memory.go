package broadcast

import (
	"context"
	"fmt"
	"sync"
)

// MemoryChannel delivers messages synchronously inside one process.
// Useful for tests and for wiring several in-process app instances.
type MemoryChannel struct {
	mu        sync.RWMutex
	receivers []Receiver
	closed    bool
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{}
}

func (c *MemoryChannel) Send(ctx context.Context, msg Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return fmt.Errorf("send: channel closed")
	}
	receivers := make([]Receiver, len(c.receivers))
	copy(receivers, c.receivers)
	c.mu.RUnlock()

	for _, fn := range receivers {
		fn(ctx, msg)
	}
	return nil
}

func (c *MemoryChannel) Receive(fn Receiver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receivers = append(c.receivers, fn)
}

func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
