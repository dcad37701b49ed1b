package services

import (
	"context"
	"sync"
	"time"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/core/ports/driving"
	"github.com/catalyst-labs/radar/internal/logger"
)

// historyKeep is how many results are retained per job.
const historyKeep = 100

// Scheduler runs each connector on its own fixed interval. A job
// failure is logged, never propagated, so one connector's failure
// never halts the others' schedules. Overlapping invocations of the
// same connector are excluded: a job still in flight when it comes due
// again is skipped for that tick.
type Scheduler struct {
	runner runner
	store  driven.JobStore
	jobs   []domain.ScheduledJob

	// tick is the due-check interval, shortened in tests.
	tick time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// runner is the slice of driving.IngestRunner the scheduler needs.
type runner interface {
	Run(ctx context.Context, connectorName string, limit int) (domain.RunStats, error)
}

var _ runner = (driving.IngestRunner)(nil)

// NewScheduler creates a scheduler for the desired job set.
func NewScheduler(r runner, store driven.JobStore, jobs []domain.ScheduledJob) *Scheduler {
	return &Scheduler{
		runner:   r,
		store:    store,
		jobs:     jobs,
		tick:     time.Minute,
		inFlight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. Blocks until Stop is called or the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseJobs(ctx); err != nil {
		logger.Error("scheduler: initialise jobs: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseJobs reconciles the desired job set into the store.
func (s *Scheduler) initialiseJobs(ctx context.Context) error {
	for i := range s.jobs {
		if err := s.ensureJob(ctx, &s.jobs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ensureJob creates or updates one job in the store, preserving the
// persisted run history while applying the configured interval.
func (s *Scheduler) ensureJob(ctx context.Context, desired *domain.ScheduledJob) error {
	job, err := s.store.GetJob(ctx, desired.ConnectorName)
	if err != nil {
		return err
	}

	if job == nil {
		job = &domain.ScheduledJob{
			ConnectorName: desired.ConnectorName,
			Interval:      desired.Interval,
			Limit:         desired.Limit,
			Enabled:       desired.Enabled,
			NextRun:       time.Now().Add(desired.Interval),
		}
	} else {
		if job.Interval != desired.Interval {
			job.Interval = desired.Interval
			job.NextRun = time.Now().Add(desired.Interval)
		}
		job.Limit = desired.Limit
		job.Enabled = desired.Enabled
	}

	return s.store.SaveJob(ctx, job)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due jobs immediately on startup.
	s.checkAndRunDueJobs(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueJobs(ctx)
		}
	}
}

// checkAndRunDueJobs finds and executes jobs that are due.
func (s *Scheduler) checkAndRunDueJobs(ctx context.Context) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		logger.Error("scheduler: list jobs: %v", err)
		return
	}

	now := time.Now()
	for i := range jobs {
		job := jobs[i]
		if !job.Enabled {
			continue
		}
		if job.NextRun.After(now) && !job.NextRun.IsZero() {
			continue
		}
		s.runJob(ctx, job)
	}
}

// runJob executes one job in its own goroutine, guarded against
// overlapping invocations of the same connector.
func (s *Scheduler) runJob(ctx context.Context, job domain.ScheduledJob) {
	s.mu.Lock()
	if s.inFlight[job.ConnectorName] {
		s.mu.Unlock()
		logger.Warn("scheduler: %s still running, skipping this tick", job.ConnectorName)
		return
	}
	s.inFlight[job.ConnectorName] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, job.ConnectorName)
			s.mu.Unlock()
		}()

		result := &domain.JobResult{
			ConnectorName: job.ConnectorName,
			StartedAt:     time.Now(),
		}

		stats, err := s.runner.Run(ctx, job.ConnectorName, job.Limit)
		result.EndedAt = time.Now()
		result.Stats = stats

		if err != nil {
			result.Success = false
			result.Error = err.Error()
			job.LastError = err.Error()
			logger.Error("scheduler: %s failed: %v", job.ConnectorName, err)
		} else {
			result.Success = true
			job.LastError = ""
			job.LastSuccess = result.EndedAt
		}

		job.LastRun = result.StartedAt
		job.NextRun = result.EndedAt.Add(job.Interval)

		if saveErr := s.store.SaveJob(ctx, &job); saveErr != nil {
			logger.Error("scheduler: save job %s: %v", job.ConnectorName, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Error("scheduler: record result for %s: %v", job.ConnectorName, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
			logger.Error("scheduler: prune history: %v", pruneErr)
		}
	}()
}
