package waiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAsync(d *Dispatcher[string], timeout time.Duration, check func(string) bool) <-chan struct {
	ev  string
	err error
} {
	out := make(chan struct {
		ev  string
		err error
	}, 1)
	go func() {
		ev, err := d.Wait(context.Background(), timeout, check)
		out <- struct {
			ev  string
			err error
		}{ev, err}
	}()
	return out
}

func TestDispatcher_DeliversMatchingEvent(t *testing.T) {
	d := NewDispatcher[string]()

	result := waitAsync(d, time.Second, func(s string) bool { return s == "👍" })
	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, time.Millisecond)

	assert.False(t, d.Dispatch("👎"))
	assert.Equal(t, 1, d.Pending())

	assert.True(t, d.Dispatch("👍"))

	r := <-result
	require.NoError(t, r.err)
	assert.Equal(t, "👍", r.ev)
	assert.Equal(t, 0, d.Pending())
}

func TestDispatcher_Timeout(t *testing.T) {
	d := NewDispatcher[string]()

	_, err := d.Wait(context.Background(), 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 0, d.Pending())

	// Nobody is listening any more
	assert.False(t, d.Dispatch("late"))
}

func TestDispatcher_ContextCancel(t *testing.T) {
	d := NewDispatcher[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Wait(ctx, time.Second, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_FansOutToEveryMatch(t *testing.T) {
	d := NewDispatcher[string]()

	first := waitAsync(d, time.Second, nil)
	second := waitAsync(d, time.Second, func(s string) bool { return s == "go" })
	require.Eventually(t, func() bool { return d.Pending() == 2 }, time.Second, time.Millisecond)

	assert.True(t, d.Dispatch("go"))

	assert.Equal(t, "go", (<-first).ev)
	assert.Equal(t, "go", (<-second).ev)
}

func TestRegistration_KeepsEventsBeforeWait(t *testing.T) {
	d := NewDispatcher[string]()

	r := d.Register(func(s string) bool { return s == "👍" })
	assert.Equal(t, 1, d.Pending())
	assert.True(t, d.Dispatch("👍"))
	assert.Equal(t, 0, d.Pending())

	ev, err := r.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "👍", ev)
}

func TestRegistration_ConsumedEventWinsOverDeadline(t *testing.T) {
	d := NewDispatcher[string]()

	// Both the event and the deadline are ready when Wait selects
	for range 50 {
		r := d.Register(nil)
		require.True(t, d.Dispatch("late"))

		ev, err := r.Wait(context.Background(), 0)
		require.NoError(t, err)
		require.Equal(t, "late", ev)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := d.Register(nil)
	require.True(t, d.Dispatch("late"))
	ev, err := r.Wait(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "late", ev)
}

func TestRegistration_Cancel(t *testing.T) {
	d := NewDispatcher[string]()

	r := d.Register(nil)
	r.Cancel()

	assert.Equal(t, 0, d.Pending())
	assert.False(t, d.Dispatch("ignored"))
}
