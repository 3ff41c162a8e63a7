package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"petreel/internal/logging"
	"petreel/internal/services"
)

// JobFunc is one scheduled unit of work. Returned errors are logged and the
// cadence continues; a failing run never stops the schedule.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	cadence Cadence
	fn      JobFunc
	cancel  context.CancelFunc
}

// Scheduler runs named jobs on their cadences. Jobs can be registered and
// removed while the scheduler is running; campaign schedules come and go at
// runtime.
type Scheduler struct {
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[string]*job
	baseCtx context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New builds a scheduler. Each run is bounded by jobTimeout when positive.
func New(logger *slog.Logger, jobTimeout time.Duration) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		logger:  logging.NewComponentLogger(logger, "scheduler"),
		timeout: jobTimeout,
		jobs:    make(map[string]*job),
	}
}

// Register adds a job under the given name, replacing any existing job with
// that name. When the scheduler is running the job's loop starts immediately.
func (s *Scheduler) Register(name string, cadence Cadence, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok && existing.cancel != nil {
		existing.cancel()
	}
	j := &job{name: name, cadence: cadence, fn: fn}
	s.jobs[name] = j
	if s.running {
		s.startLocked(j)
	}
}

// Deregister removes the named job, stopping its loop if running.
func (s *Scheduler) Deregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[name]; ok {
		if j.cancel != nil {
			j.cancel()
		}
		delete(s.jobs, name)
	}
}

// DeregisterPrefix removes every job whose name starts with prefix and
// returns how many were removed.
func (s *Scheduler) DeregisterPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for name, j := range s.jobs {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if j.cancel != nil {
			j.cancel()
		}
		delete(s.jobs, name)
		removed++
	}
	return removed
}

// Jobs returns the registered job names in sorted order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start launches every registered job loop. It is a no-op when already
// running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for _, j := range s.jobs {
		s.startLocked(j)
	}
	s.logger.Info("scheduler started", logging.Int("jobs", len(s.jobs)))
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) startLocked(j *job) {
	loopCtx, cancel := context.WithCancel(s.baseCtx)
	j.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(loopCtx, j)
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	next := j.cadence.Next(time.Now())
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		s.runJob(ctx, j)
		next = j.cadence.Next(time.Now())
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	runID := uuid.NewString()
	runCtx := services.WithRunID(ctx, runID)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}

	log := s.logger.With(
		logging.String(logging.FieldJob, j.name),
		logging.String(logging.FieldRunID, runID))
	log.Debug("job started")

	start := time.Now()
	if err := j.fn(runCtx); err != nil {
		log.Error("job failed",
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err))
		return
	}
	log.Debug("job finished", logging.Duration("elapsed", time.Since(start)))
}
