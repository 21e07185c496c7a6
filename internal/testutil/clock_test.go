package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqClock_NextAndReset(t *testing.T) {
	clock := NewSeqClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(1), clock.Next())
}

func TestManualClock_FiresOnlyWhenDue(t *testing.T) {
	clock := NewManualClock()
	fired := 0
	clock.AfterFunc(500*time.Millisecond, func() { fired++ })

	assert.Equal(t, 0, clock.Advance(499*time.Millisecond))
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, clock.Pending())

	assert.Equal(t, 1, clock.Advance(time.Millisecond))
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 500*time.Millisecond, clock.Now())
}

func TestManualClock_OrderByDueTimeThenSchedule(t *testing.T) {
	clock := NewManualClock()
	var order []string
	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "late") })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "early-1") })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "early-2") })

	clock.Advance(time.Second)
	assert.Equal(t, []string{"early-1", "early-2", "late"}, order)
}

func TestManualClock_StopPreventsFire(t *testing.T) {
	clock := NewManualClock()
	fired := false
	timer := clock.AfterFunc(time.Millisecond, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	clock.Advance(time.Hour)
	assert.False(t, fired)
}

func TestManualClock_NestedScheduleWithinAdvance(t *testing.T) {
	clock := NewManualClock()
	var at []time.Duration
	clock.AfterFunc(10*time.Millisecond, func() {
		at = append(at, clock.Now())
		clock.AfterFunc(10*time.Millisecond, func() {
			at = append(at, clock.Now())
		})
	})

	assert.Equal(t, 2, clock.Advance(25*time.Millisecond))
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, at)
	assert.Equal(t, 25*time.Millisecond, clock.Now())
}

func TestFixedFlowGenerator(t *testing.T) {
	assert.Equal(t, "flow-1", NewFixedFlowGenerator("flow-1").Generate())
	assert.Equal(t, "test-flow-default", NewFixedFlowGenerator("").Generate())
}
