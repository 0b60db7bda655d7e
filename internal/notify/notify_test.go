package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_ExpiresAfterDuration(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	c.Notify("saved", Success, 100*time.Millisecond)
	require.Len(t, c.Visible(), 1)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, c.Visible())
}

func TestNotify_PreservesInsertionOrder(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	c.Notify("first", Info, time.Minute)
	c.Notify("second", Warning, time.Minute)
	c.Notify("third", Error, time.Minute)

	visible := c.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "first", visible[0].Text)
	assert.Equal(t, "second", visible[1].Text)
	assert.Equal(t, "third", visible[2].Text)
	assert.Equal(t, Error, visible[2].Severity)
}

func TestNotify_UniqueIDs(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := c.Info("x")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestNotify_DefaultDuration(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	c.Notify("hello", Info, 0)
	c.Success("done")

	for _, m := range c.Visible() {
		assert.Equal(t, DefaultDuration, m.Duration)
		assert.Equal(t, int64(3000), m.DurationMS())
	}
}

func TestNotify_IndependentTimers(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	c.Notify("short", Info, 50*time.Millisecond)
	c.Notify("long", Info, time.Minute)

	assert.Eventually(t, func() bool {
		v := c.Visible()
		return len(v) == 1 && v[0].Text == "long"
	}, time.Second, 10*time.Millisecond)
}

func TestDismiss(t *testing.T) {
	c := NewChannel()
	defer c.Close()

	id := c.Error("failed")
	c.Warning("careful")

	assert.True(t, c.Dismiss(id))
	assert.False(t, c.Dismiss(id))
	assert.False(t, c.Dismiss("missing"))

	visible := c.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "careful", visible[0].Text)
}
