// Package notify keeps the transient toast messages shown to the operator.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration applies when Notify is called with a non-positive duration.
const DefaultDuration = 3000 * time.Millisecond

// Severity of a message.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Message is one visible toast.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"message"`
	Severity  Severity      `json:"type"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// DurationMS is the display duration in milliseconds, as the UI expects it.
func (m Message) DurationMS() int64 {
	return m.Duration.Milliseconds()
}

// Channel holds visible messages in insertion order. Each message removes
// itself when its duration elapses, independently of the others.
type Channel struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	msg   Message
	timer *time.Timer
}

// NewChannel returns an empty channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Notify appends a message and returns its id.
func (c *Channel) Notify(text string, severity Severity, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}

	id := newID()
	msg := Message{
		ID:        id,
		Text:      text,
		Severity:  severity,
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{
		msg:   msg,
		timer: time.AfterFunc(duration, func() { c.Dismiss(id) }),
	})
	return id
}

// Dismiss removes the message immediately. Unknown ids are ignored.
func (c *Channel) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries {
		if e.msg.ID == id {
			e.timer.Stop()
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Visible returns a copy of the current messages, oldest first.
func (c *Channel) Visible() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.msg
	}
	return out
}

// Close stops every pending timer and drops all messages.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = nil
}

func (c *Channel) Success(text string) string { return c.Notify(text, Success, 0) }
func (c *Channel) Error(text string) string   { return c.Notify(text, Error, 0) }
func (c *Channel) Warning(text string) string { return c.Notify(text, Warning, 0) }
func (c *Channel) Info(text string) string    { return c.Notify(text, Info, 0) }

// newID returns a time-ordered UUID, falling back to a random one if the
// clock sequence cannot be read.
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
