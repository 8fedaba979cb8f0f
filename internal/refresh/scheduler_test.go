package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTicksImmediately(t *testing.T) {
	var calls atomic.Int64
	h := Start(context.Background(), Task{Name: "immediate", Period: time.Hour, Tick: func(time.Time) { calls.Add(1) }})
	defer h.Stop()
	assert.Equal(t, int64(1), calls.Load())
}

func TestPeriodicTicks(t *testing.T) {
	var calls atomic.Int64
	h := Start(context.Background(), Task{Name: "periodic", Period: 5 * time.Millisecond, Tick: func(time.Time) { calls.Add(1) }})
	defer h.Stop()
	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
}

func TestNoApplyAfterStop(t *testing.T) {
	var calls atomic.Int64
	h := Start(context.Background(), Task{Name: "stop", Period: time.Millisecond, Tick: func(time.Time) {
		time.Sleep(200 * time.Microsecond)
		calls.Add(1)
	}})
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)

	h.Stop()
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load())

	// 幂等
	h.Stop()
	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed after Stop")
	}
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	h := Start(ctx, Task{Name: "ctx", Period: time.Millisecond, Tick: func(time.Time) { calls.Add(1) }})
	cancel()
	<-h.Done()
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestPanicInTickIsRecovered(t *testing.T) {
	var calls atomic.Int64
	h := Start(context.Background(), Task{Name: "panic", Period: 2 * time.Millisecond, Tick: func(time.Time) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}})
	defer h.Stop()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 2*time.Millisecond)
}

func TestCanceledContextSkipsFirstTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int64
	h := Start(ctx, Task{Name: "canceled", Tick: func(time.Time) { calls.Add(1) }})
	h.Stop()
	assert.Zero(t, calls.Load())
}
