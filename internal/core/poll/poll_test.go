package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	task := Start(context.Background(), "test", 10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})
	defer task.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestTask_StopIsIdempotentAndHalts(t *testing.T) {
	var runs atomic.Int32
	task := Start(context.Background(), "test", 5*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	task.Stop()
	task.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	var nilTask *Task
	assert.NotPanics(t, nilTask.Stop)
}

func TestTask_StopCancelsInFlightBody(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	task := Start(context.Background(), "test", time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})

	<-started
	task.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("body context was not cancelled")
	}
}

func TestTask_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Start(ctx, "test", time.Hour, func(context.Context) {})
	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit on parent cancel")
	}
}

func TestDebouncer_CollapsesTriggers(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
