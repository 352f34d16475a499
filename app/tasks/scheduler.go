package tasks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xmer/fitgirl-rss-reader/app/metrics"
)

const DefaultCycleTimeout = 5 * time.Minute

// Scheduler runs poll cycles on a fixed interval. At most one cycle is in
// flight; ticks and manual triggers that arrive meanwhile are skipped.
type Scheduler struct {
	cycle        Cycle
	feedURL      string
	interval     time.Duration
	cycleTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ticker *time.Ticker

	inFlight atomic.Bool
	skipped  atomic.Int64

	mu   sync.RWMutex
	last *CycleSummary
}

func NewScheduler(cycle Cycle, feedURL string, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cycle:        cycle,
		feedURL:      feedURL,
		interval:     interval,
		cycleTimeout: DefaultCycleTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start runs a cycle immediately and then one per interval until Stop is
// called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	context.AfterFunc(ctx, s.cancel)

	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.ticker.Stop()

		s.trigger(TaskTypePollFeed)

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-s.ticker.C:
				s.trigger(TaskTypePollFeed)
			}
		}
	}()

	slog.Info("Polling started", "interval", s.interval.String(), "interval_minutes", s.interval.Minutes())
}

// Stop ends the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Polling stopped")
}

// Trigger starts a manual cycle in the background. It reports false when a
// cycle is already running or the scheduler is stopped.
func (s *Scheduler) Trigger() bool {
	return s.trigger(TaskTypeManualPoll)
}

// RunOnce runs a cycle synchronously and reports whether it ran.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.acquire(TaskTypeManualPoll) {
		return false
	}
	s.wg.Add(1)
	defer s.wg.Done()

	s.run(ctx, TaskTypeManualPoll)
	return true
}

func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}

func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// LastCycle returns the summary of the most recent finished cycle.
func (s *Scheduler) LastCycle() (CycleSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return CycleSummary{}, false
	}
	return *s.last, true
}

func (s *Scheduler) trigger(taskType TaskType) bool {
	if s.ctx.Err() != nil {
		return false
	}
	if !s.acquire(taskType) {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, taskType)
	}()
	return true
}

func (s *Scheduler) acquire(taskType TaskType) bool {
	if s.inFlight.CompareAndSwap(false, true) {
		return true
	}

	s.skipped.Add(1)
	metrics.RecordCycle("skipped", 0)
	slog.Warn("Poll cycle still running, skipping", "type", string(taskType))
	return false
}

func (s *Scheduler) run(ctx context.Context, taskType TaskType) {
	defer s.inFlight.Store(false)

	// A started cycle finishes even when the scheduler is stopped.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cycleTimeout)
	defer cancel()

	task := NewTask(taskType, s.feedURL)
	task.Start()

	slog.Debug("Task started", "type", string(task.Type), "id", task.ID)

	summary := s.cycle.RunCycle(ctx)
	summary.TaskID = task.ID
	summary.Trigger = task.Type
	summary.StartedAt = task.StartedAt.UTC()
	summary.Duration = task.GetDuration()

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()

	metrics.RecordCycle(summary.result(), summary.Duration.Seconds())

	slog.Info("Task completed",
		"type", string(task.Type),
		"id", task.ID,
		"fetched", summary.Fetched,
		"new", summary.New,
		"published", summary.Published,
		"failed", summary.Failed,
		"duration", summary.Duration.String())
}
