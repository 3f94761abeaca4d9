package orchestration

import (
	"context"
	"sync"
	"time"
)

// EventKind identifies the type of progress event emitted during a run.
type EventKind string

const (
	EventLoopStep         EventKind = "assistant_loop_step"
	EventAssistantMessage EventKind = "assistant_message"
	EventToolCall         EventKind = "tool_call"
	EventAskUser          EventKind = "ask_user"
	EventToolResult       EventKind = "tool_result"
	EventWarning          EventKind = "warning"
)

// Event is one progress notification. Consumers may ignore any kind.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// ChannelUI is a UI that streams events over a buffered channel while
// auto-approving confirmations and answering questions with an empty
// string. It suits unattended runs whose host still wants to observe
// progress (a TUI pane, a log shipper).
type ChannelUI struct {
	ch     chan Event
	closed bool
	mu     sync.Mutex
}

// NewChannelUI creates a ChannelUI with the given buffer size (<=0 means 256).
func NewChannelUI(bufferSize int) *ChannelUI {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &ChannelUI{ch: make(chan Event, bufferSize)}
}

func (u *ChannelUI) ConfirmToolCall(ctx context.Context, toolName string, arguments map[string]any, reason string) (bool, error) {
	return true, nil
}

func (u *ChannelUI) AskUser(ctx context.Context, question string, options []string, allowFreeText bool) (string, error) {
	return "", nil
}

// EmitEvent sends the event to the channel. If the channel is full or the
// UI is closed, the event is dropped so the loop never blocks on a slow
// consumer.
func (u *ChannelUI) EmitEvent(kind EventKind, payload map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	event := Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
	select {
	case u.ch <- event:
	default:
	}
}

// Events returns the read-only event channel.
func (u *ChannelUI) Events() <-chan Event {
	return u.ch
}

// Close closes the event channel. Safe to call multiple times.
func (u *ChannelUI) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.closed {
		u.closed = true
		close(u.ch)
	}
}
