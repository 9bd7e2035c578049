package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestManual_AdvanceFiresDueTimersInOrder(t *testing.T) {
	c := NewManual(epoch)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "late") })

	c.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestManual_StopPreventsCallback(t *testing.T) {
	c := NewManual(epoch)
	called := false
	tm := c.AfterFunc(time.Second, func() { called = true })

	require.True(t, tm.Stop())
	require.False(t, tm.Stop())

	c.Advance(time.Minute)
	assert.False(t, called)
}

func TestManual_CallbackSeesDeadlineAndCanReschedule(t *testing.T) {
	c := NewManual(epoch)
	var seen []time.Time

	c.AfterFunc(time.Second, func() {
		seen = append(seen, c.Now())
		c.AfterFunc(time.Second, func() { seen = append(seen, c.Now()) })
	})

	c.Advance(5 * time.Second)

	require.Len(t, seen, 2)
	assert.Equal(t, epoch.Add(time.Second), seen[0])
	assert.Equal(t, epoch.Add(2*time.Second), seen[1])
	assert.Equal(t, 0, c.Pending())
}

func TestManual_StopAfterFireReturnsFalse(t *testing.T) {
	c := NewManual(epoch)
	tm := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, tm.Stop())
}
