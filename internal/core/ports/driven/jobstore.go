package driven

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// JobStore persists scheduler job state and run history.
type JobStore interface {
	// GetJob retrieves a job by connector name. Returns nil when the
	// job does not exist.
	GetJob(ctx context.Context, connectorName string) (*domain.ScheduledJob, error)

	// SaveJob stores or updates a job.
	SaveJob(ctx context.Context, job *domain.ScheduledJob) error

	// ListJobs returns all jobs.
	ListJobs(ctx context.Context) ([]domain.ScheduledJob, error)

	// RecordResult appends a job execution result to the history.
	RecordResult(ctx context.Context, result *domain.JobResult) error

	// PruneHistory keeps only the most recent keepPerJob results per job.
	PruneHistory(ctx context.Context, keepPerJob int) error
}
