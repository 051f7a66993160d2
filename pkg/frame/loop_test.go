package frame

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoop_CoalescesRequests(t *testing.T) {
	var ticks atomic.Int32
	release := make(chan struct{})
	lp := NewLoop(120, func(time.Time) bool {
		ticks.Add(1)
		<-release
		return false
	})

	for range 10 {
		lp.Request()
	}
	lp.Start()
	defer lp.Stop()

	close(release)
	require.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestLoop_TicksWhileAnimating(t *testing.T) {
	var remaining atomic.Int32
	remaining.Store(5)
	var ticks atomic.Int32
	lp := NewLoop(200, func(time.Time) bool {
		ticks.Add(1)
		return remaining.Add(-1) > 0
	})
	lp.Start()
	defer lp.Stop()

	lp.Request()
	require.Eventually(t, func() bool { return ticks.Load() == 5 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(5), ticks.Load())
	assert.Equal(t, uint64(5), lp.Frames())
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	lp := NewLoop(60, func(time.Time) bool { return true })
	lp.Start()
	lp.Start()
	assert.True(t, lp.Running())
	lp.Request()
	lp.Stop()
	lp.Stop()
	assert.False(t, lp.Running())
}

func TestLoop_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	var ticks atomic.Int32
	lp := NewLoop(100, func(time.Time) bool {
		if ticks.Add(1) == 1 {
			panic("bad frame")
		}
		return false
	}, WithLogger(zap.New(core)))
	lp.Start()
	defer lp.Stop()

	lp.Request()
	require.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	lp.Request()
	require.Eventually(t, func() bool { return ticks.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "frame panic", logs.All()[0].Message)
}

func TestLoop_UsesClock(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := make(chan time.Time, 1)
	lp := NewLoop(60, func(now time.Time) bool {
		got <- now
		return false
	}, WithClock(func() time.Time { return at }))
	lp.Start()
	defer lp.Stop()
	lp.Request()

	select {
	case now := <-got:
		assert.Equal(t, at, now)
	case <-time.After(time.Second):
		t.Fatal("no frame")
	}
}

func BenchmarkLoop_Request(b *testing.B) {
	lp := NewLoop(60, func(time.Time) bool { return false })
	lp.Start()
	defer lp.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lp.Request()
	}
}
