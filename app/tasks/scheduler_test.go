package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingCycle holds each cycle open until release is signalled.
type blockingCycle struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

var _ Cycle = (*blockingCycle)(nil)

func newBlockingCycle() *blockingCycle {
	return &blockingCycle{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (c *blockingCycle) RunCycle(ctx context.Context) CycleSummary {
	c.runs.Add(1)
	c.started <- struct{}{}
	<-c.release
	return CycleSummary{Fetched: 3, New: 1, Published: 1}
}

type countingCycle struct {
	runs atomic.Int32
}

func (c *countingCycle) RunCycle(context.Context) CycleSummary {
	c.runs.Add(1)
	return CycleSummary{}
}

func waitStarted(t *testing.T, c *blockingCycle) {
	t.Helper()
	select {
	case <-c.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not start")
	}
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	cycle := newBlockingCycle()
	scheduler := NewScheduler(cycle, "https://feed.example.com/", time.Hour)

	scheduler.Start(context.Background())
	waitStarted(t, cycle)

	assert.True(t, scheduler.InFlight())

	close(cycle.release)
	scheduler.Stop()

	assert.Equal(t, int32(1), cycle.runs.Load())
	summary, ok := scheduler.LastCycle()
	require.True(t, ok)
	assert.Equal(t, TaskTypePollFeed, summary.Trigger)
	assert.Equal(t, 1, summary.Published)
	assert.NotEmpty(t, summary.TaskID)
}

func TestScheduler_SkipsWhileCycleInFlight(t *testing.T) {
	cycle := newBlockingCycle()
	scheduler := NewScheduler(cycle, "https://feed.example.com/", time.Hour)

	scheduler.Start(context.Background())
	waitStarted(t, cycle)

	assert.False(t, scheduler.Trigger())
	assert.False(t, scheduler.RunOnce(context.Background()))
	assert.Equal(t, int64(2), scheduler.Skipped())

	close(cycle.release)
	scheduler.Stop()

	assert.Equal(t, int32(1), cycle.runs.Load())
}

func TestScheduler_TicksRunCycles(t *testing.T) {
	cycle := &countingCycle{}
	scheduler := NewScheduler(cycle, "https://feed.example.com/", 20*time.Millisecond)

	scheduler.Start(context.Background())

	assert.Eventually(t, func() bool { return cycle.runs.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)

	scheduler.Stop()
}

func TestScheduler_StopWaitsForInFlightCycle(t *testing.T) {
	cycle := newBlockingCycle()
	scheduler := NewScheduler(cycle, "https://feed.example.com/", time.Hour)

	scheduler.Start(context.Background())
	waitStarted(t, cycle)

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(cycle.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	assert.False(t, scheduler.Trigger())
}

func TestScheduler_ParentContextStopsLoop(t *testing.T) {
	cycle := &countingCycle{}
	scheduler := NewScheduler(cycle, "https://feed.example.com/", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	cycle := &countingCycle{}
	scheduler := NewScheduler(cycle, "https://feed.example.com/", time.Hour)

	assert.True(t, scheduler.RunOnce(context.Background()))
	assert.Equal(t, int32(1), cycle.runs.Load())
	assert.False(t, scheduler.InFlight())

	summary, ok := scheduler.LastCycle()
	require.True(t, ok)
	assert.Equal(t, TaskTypeManualPoll, summary.Trigger)
}

func TestTask_GetDuration(t *testing.T) {
	task := NewTask(TaskTypePollFeed, "https://feed.example.com/")
	assert.Zero(t, task.GetDuration())

	task.Start()
	assert.GreaterOrEqual(t, task.GetDuration(), time.Duration(0))
	assert.Len(t, task.ID, 36)
}
