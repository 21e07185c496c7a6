package debounce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authform/internal/debounce"
	"github.com/roach88/authform/internal/testutil"
)

func TestSchedule_FiresOnceAfterDelay(t *testing.T) {
	clock := testutil.NewManualClock()
	d := debounce.New(clock)

	calls := 0
	d.Schedule(func() { calls++ }, debounce.DefaultDelay)
	require.True(t, d.Pending())

	clock.Advance(debounce.DefaultDelay - time.Millisecond)
	assert.Equal(t, 0, calls)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, calls, "callback runs exactly once")
}

func TestSchedule_CoalescesBurst(t *testing.T) {
	clock := testutil.NewManualClock()
	d := debounce.New(clock)

	value := ""
	var seen []string
	check := func() { seen = append(seen, value) }

	for _, v := range []string{"a", "ab", "ab@"} {
		value = v
		d.Schedule(check, debounce.DefaultDelay)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, seen, "nothing fires while typing continues")

	clock.Advance(debounce.DefaultDelay)
	assert.Equal(t, []string{"ab@"}, seen)
	assert.Equal(t, 0, clock.Pending(), "earlier handles were stopped")
}

func TestSchedule_LastCallbackWins(t *testing.T) {
	clock := testutil.NewManualClock()
	d := debounce.New(clock)

	var got []int
	for i := 1; i <= 5; i++ {
		n := i
		d.Schedule(func() { got = append(got, n) }, debounce.DefaultDelay)
	}
	clock.Advance(debounce.DefaultDelay)
	assert.Equal(t, []int{5}, got)
}

func TestSchedule_SeparateQuietPeriodsFireSeparately(t *testing.T) {
	clock := testutil.NewManualClock()
	d := debounce.New(clock)

	calls := 0
	d.Schedule(func() { calls++ }, debounce.DefaultDelay)
	clock.Advance(debounce.DefaultDelay)
	d.Schedule(func() { calls++ }, debounce.DefaultDelay)
	clock.Advance(debounce.DefaultDelay)

	assert.Equal(t, 2, calls)
}

func TestCancel_CallbackNeverRuns(t *testing.T) {
	clock := testutil.NewManualClock()
	d := debounce.New(clock)

	d.Schedule(func() { t.Fatal("cancelled callback ran") }, debounce.DefaultDelay)
	clock.Advance(250 * time.Millisecond)
	d.Cancel()
	assert.False(t, d.Pending())

	clock.Advance(24 * time.Hour)
	d.Cancel()
}

// staleScheduler delivers every timer regardless of Stop, the way a real
// timer can fire into a queue just before it is stopped.
type staleScheduler struct {
	fires []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (s *staleScheduler) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	s.fires = append(s.fires, f)
	return noopTimer{}
}

func TestCancel_SuppressesAlreadyDeliveredFire(t *testing.T) {
	sched := &staleScheduler{}
	d := debounce.New(sched)

	calls := 0
	d.Schedule(func() { calls++ }, debounce.DefaultDelay)
	d.Schedule(func() { calls += 10 }, debounce.DefaultDelay)
	d.Cancel()

	for _, f := range sched.fires {
		f()
	}
	assert.Equal(t, 0, calls)
}

func TestSchedule_StaleFireIgnoredNewestRuns(t *testing.T) {
	sched := &staleScheduler{}
	d := debounce.New(sched)

	var got []string
	d.Schedule(func() { got = append(got, "first") }, debounce.DefaultDelay)
	d.Schedule(func() { got = append(got, "second") }, debounce.DefaultDelay)

	for _, f := range sched.fires {
		f()
	}
	assert.Equal(t, []string{"second"}, got)
}
