package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimClock_AfterFunc(t *testing.T) {
	clock := NewSimClock(time.Unix(0, 0))

	fired := 0
	clock.AfterFunc(30*time.Second, func() { fired++ })

	clock.Advance(29 * time.Second)
	assert.Equal(t, 0, fired, "timer must not fire before its deadline")

	clock.Advance(1 * time.Second)
	assert.Equal(t, 1, fired)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, fired, "one-shot timer must fire exactly once")
}

func TestSimClock_StopCancelsTimer(t *testing.T) {
	clock := NewSimClock(time.Unix(0, 0))

	fired := false
	timer := clock.AfterFunc(10*time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.False(t, timer.Stop(), "second Stop reports already stopped")
}

func TestSimClock_TickEvery(t *testing.T) {
	clock := NewSimClock(time.Unix(0, 0))

	var fireTimes []time.Time
	ticker := clock.TickEvery(time.Second, func() {
		fireTimes = append(fireTimes, clock.Now())
	})

	clock.Advance(3500 * time.Millisecond)
	assert.Len(t, fireTimes, 3)
	for i, ft := range fireTimes {
		assert.Equal(t, time.Unix(int64(i+1), 0), ft,
			"callback must observe its own fire time")
	}

	ticker.Stop()
	clock.Advance(10 * time.Second)
	assert.Len(t, fireTimes, 3)
}

func TestSimClock_DeadlineOrdering(t *testing.T) {
	clock := NewSimClock(time.Unix(0, 0))

	var order []string
	clock.AfterFunc(5*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(2*time.Second, func() { order = append(order, "a") })
	clock.AfterFunc(5*time.Second, func() { order = append(order, "c") })

	clock.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSimClock_RearmInsideCallback(t *testing.T) {
	clock := NewSimClock(time.Unix(0, 0))

	fired := 0
	var arm func()
	arm = func() {
		fired++
		if fired < 3 {
			clock.AfterFunc(time.Second, arm)
		}
	}
	clock.AfterFunc(time.Second, arm)

	clock.Advance(10 * time.Second)
	assert.Equal(t, 3, fired)
}
