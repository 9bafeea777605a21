package broadcast

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestFileChannel(t *testing.T, path string) *FileChannel {
	t.Helper()
	ch, err := NewFileChannel(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new file channel: %v", err)
	}
	t.Cleanup(func() { ch.Close() })
	return ch
}

type collector struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *collector) receive(_ context.Context, msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collector) wait(t *testing.T, n int) []Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := len(c.msgs)
		c.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) < n {
		t.Fatalf("received %d messages, want %d", len(c.msgs), n)
	}
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func TestFileChannelDeliversAcrossChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.jsonl")
	sender := newTestFileChannel(t, path)
	receiver := newTestFileChannel(t, path)

	var got collector
	receiver.Receive(got.receive)

	msg := Message{Type: MessageType, TaskID: "t1", Action: ActionSaved, SenderID: "a"}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := got.wait(t, 1)
	if msgs[0].TaskID != "t1" || msgs[0].Action != ActionSaved {
		t.Fatalf("got %+v", msgs[0])
	}
}

func TestFileChannelSkipsJournalHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.jsonl")
	sender := newTestFileChannel(t, path)

	old := Message{Type: MessageType, TaskID: "old", Action: ActionSaved, SenderID: "a"}
	if err := sender.Send(context.Background(), old); err != nil {
		t.Fatalf("send: %v", err)
	}

	// A channel opened now must only see appends after it opened.
	late := newTestFileChannel(t, path)
	var got collector
	late.Receive(got.receive)

	fresh := Message{Type: MessageType, TaskID: "fresh", Action: ActionDeleted, SenderID: "a"}
	if err := sender.Send(context.Background(), fresh); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := got.wait(t, 1)
	if msgs[0].TaskID != "fresh" {
		t.Fatalf("late channel replayed history: %+v", msgs)
	}
}

func TestFileChannelSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.jsonl")
	receiver := newTestFileChannel(t, path)

	var got collector
	receiver.Receive(got.receive)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if _, err := f.WriteString("not json at all\n"); err != nil {
		t.Fatalf("append garbage: %v", err)
	}
	f.Close()

	sender := newTestFileChannel(t, path)
	msg := Message{Type: MessageType, TaskID: "t1", Action: ActionSaved, SenderID: "a"}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := got.wait(t, 1)
	if msgs[0].TaskID != "t1" {
		t.Fatalf("got %+v", msgs[0])
	}
}

func TestFileChannelSendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.jsonl")
	ch, err := NewFileChannel(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new file channel: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := ch.Send(context.Background(), Message{Type: MessageType}); err == nil {
		t.Fatal("expected error sending on closed channel")
	}
}
