package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// JobStore is an in-memory driven.JobStore.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]domain.ScheduledJob
	history []domain.JobResult
}

var _ driven.JobStore = (*JobStore)(nil)

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.ScheduledJob)}
}

// GetJob retrieves a job by connector name, or nil when absent.
func (s *JobStore) GetJob(_ context.Context, connectorName string) (*domain.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[connectorName]; ok {
		return &job, nil
	}
	return nil, nil
}

// SaveJob stores or updates a job.
func (s *JobStore) SaveJob(_ context.Context, job *domain.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ConnectorName] = *job
	return nil
}

// ListJobs returns all jobs ordered by connector name.
func (s *JobStore) ListJobs(_ context.Context) ([]domain.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]domain.ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ConnectorName < jobs[j].ConnectorName })
	return jobs, nil
}

// RecordResult appends a job execution result to the history.
func (s *JobStore) RecordResult(_ context.Context, result *domain.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *result)
	return nil
}

// PruneHistory keeps only the most recent keepPerJob results per job.
func (s *JobStore) PruneHistory(_ context.Context, keepPerJob int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	var kept []domain.JobResult
	for i := len(s.history) - 1; i >= 0; i-- {
		r := s.history[i]
		if counts[r.ConnectorName] >= keepPerJob {
			continue
		}
		counts[r.ConnectorName]++
		kept = append(kept, r)
	}
	// Restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	s.history = kept
	return nil
}

// History returns a snapshot of the result history, for assertions.
func (s *JobStore) History() []domain.JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]domain.JobResult, len(s.history))
	copy(history, s.history)
	return history
}
