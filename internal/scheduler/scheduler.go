// Package scheduler provides the recurring driver that runs registered
// jobs on a fixed cadence until the process shuts down.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler owns a registry of named recurring jobs. It has an explicit
// lifecycle: jobs are registered while stopped, Start launches them and
// Stop cancels them all. A job never overlaps itself: if a run is still in
// flight when the next tick arrives, that tick is skipped.
type Scheduler struct {
	logger  *zap.Logger
	jobs    map[string]*job
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
	busy     atomic.Bool
}

func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a recurring job. Registering a name twice replaces the
// earlier definition; registration after Start has no effect on running jobs.
func (s *Scheduler) AddJob(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &job{name: name, interval: interval, run: run}
}

// Start launches every registered job, each with an immediate first run.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, j := range s.jobs {
		go s.runJob(j)
	}

	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels all running jobs. In-flight cycles observe the cancelled
// context; there is no per-cycle cancellation beyond that.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
	s.logger.Info("scheduler stopped")
}

// Running reports whether the scheduler has been started and not stopped.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.ctx.Err() == nil
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Scheduler) runJob(j *job) {
	s.runOnce(j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(j)
		}
	}
}

// runOnce executes a single cycle. Errors and panics are logged and
// swallowed: one bad cycle must never take down the driver.
func (s *Scheduler) runOnce(j *job) {
	if !j.busy.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping tick",
			zap.String("job", j.name))
		return
	}
	defer j.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				zap.String("job", j.name),
				zap.Any("panic", r))
		}
	}()

	if err := j.run(s.ctx); err != nil {
		s.logger.Error("job failed",
			zap.String("job", j.name),
			zap.Error(err))
	}
}
