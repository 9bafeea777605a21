package broadcast

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const defaultPollInterval = 500 * time.Millisecond

// FileChannel synchronizes instances through an append-only JSON-lines
// journal on a shared filesystem. Each Send appends one line; a poller
// tails the file and delivers lines appended since the last poll,
// including lines written by other processes. Malformed lines are
// skipped so one bad writer cannot wedge every reader.
type FileChannel struct {
	path   string
	poll   time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	offset    int64
	receivers []Receiver
	closed    bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewFileChannel opens (creating if needed) the journal at path and
// starts tailing it. Messages already in the journal are not replayed;
// only appends after this call are delivered.
func NewFileChannel(path string, poll time.Duration, logger *slog.Logger) (*FileChannel, error) {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sync journal %s: %w", path, err)
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("stat sync journal %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &FileChannel{
		path:   path,
		poll:   poll,
		logger: logger,
		offset: info.Size(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.run(ctx)
	return c, nil
}

func (c *FileChannel) Send(ctx context.Context, msg Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("send: channel closed")
	}

	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode sync message: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sync journal %s: %w", c.path, err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append sync journal %s: %w", c.path, err)
	}
	return nil
}

func (c *FileChannel) Receive(fn Receiver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receivers = append(c.receivers, fn)
}

func (c *FileChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	<-c.done
	return nil
}

func (c *FileChannel) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

// drain delivers any journal lines appended since the last poll.
func (c *FileChannel) drain(ctx context.Context) {
	c.mu.Lock()
	offset := c.offset
	receivers := make([]Receiver, len(c.receivers))
	copy(receivers, c.receivers)
	c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		c.logger.Warn("sync journal unreadable", "path", c.path, "error", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < offset {
		// Journal was rotated or truncated; start over from the top.
		offset = 0
	}
	if info.Size() == offset {
		return
	}
	if _, err := f.Seek(offset, 0); err != nil {
		return
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	consumed := offset
	for scanner.Scan() {
		line := scanner.Bytes()
		consumed += int64(len(line)) + 1
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			c.logger.Debug("skipping malformed sync line", "path", c.path, "error", err)
			continue
		}
		for _, fn := range receivers {
			fn(ctx, msg)
		}
	}

	c.mu.Lock()
	if consumed > c.offset || info.Size() < c.offset {
		c.offset = consumed
	}
	c.mu.Unlock()
}
