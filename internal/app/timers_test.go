package app

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimers_FiresOnce(t *testing.T) {
	timers := NewTimers()
	key := TimerKey{Room: "AAAAAA", Member: "m", Kind: TimerMemberGrace}
	var fired atomic.Int32

	timers.Schedule(key, 5*time.Millisecond, func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, timers.Pending(key))
	assert.False(t, timers.Cancel(key), "cancelling a fired timer is a no-op")
}

func TestTimers_CancelPreventsFire(t *testing.T) {
	timers := NewTimers()
	key := TimerKey{Room: "AAAAAA", Kind: TimerHostGrace}
	var fired atomic.Int32

	timers.Schedule(key, 20*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, timers.Cancel(key))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestTimers_ArmIsIdempotent(t *testing.T) {
	timers := NewTimers()
	key := TimerKey{Room: "AAAAAA", Kind: TimerHostGrace}
	var first, second atomic.Int32

	assert.True(t, timers.Arm(key, 20*time.Millisecond, func() { first.Add(1) }))
	assert.False(t, timers.Arm(key, time.Millisecond, func() { second.Add(1) }))

	require.Eventually(t, func() bool { return first.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(0), second.Load())
}

func TestTimers_ScheduleReplaces(t *testing.T) {
	timers := NewTimers()
	key := TimerKey{Room: "AAAAAA", Member: "m", Kind: TimerMemberGrace}
	var old, fresh atomic.Int32

	timers.Schedule(key, 10*time.Millisecond, func() { old.Add(1) })
	timers.Schedule(key, 10*time.Millisecond, func() { fresh.Add(1) })

	require.Eventually(t, func() bool { return fresh.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), old.Load())
}

func TestTimers_CancelRoom(t *testing.T) {
	timers := NewTimers()
	var fired atomic.Int32
	timers.Schedule(TimerKey{Room: "AAAAAA", Kind: TimerHostGrace}, 20*time.Millisecond, func() { fired.Add(1) })
	timers.Schedule(TimerKey{Room: "AAAAAA", Member: "m", Kind: TimerMemberGrace}, 20*time.Millisecond, func() { fired.Add(1) })
	timers.Schedule(TimerKey{Room: "BBBBBB", Kind: TimerHostGrace}, 20*time.Millisecond, func() { fired.Add(1) })

	assert.Equal(t, 2, timers.CancelRoom("AAAAAA"))
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimers_PanicIsContained(t *testing.T) {
	timers := NewTimers()
	done := make(chan struct{})
	timers.Schedule(TimerKey{Room: "AAAAAA", Kind: TimerHostGrace}, time.Millisecond, func() {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
