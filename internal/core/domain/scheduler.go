package domain

import "time"

// ScheduledJob is the persisted state of one connector's periodic schedule.
type ScheduledJob struct {
	// ConnectorName keys the job.
	ConnectorName string

	// Interval defines how often the connector runs.
	Interval time.Duration

	// Limit is the batch limit passed to each scheduled invocation.
	Limit int

	// LastRun is when the job last started.
	LastRun time.Time

	// NextRun is when the job should run next.
	NextRun time.Time

	// LastError contains the last failure message, if any.
	LastError string

	// LastSuccess is when the job last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the job is active.
	Enabled bool
}

// JobResult is the outcome of one scheduled invocation, kept for history.
type JobResult struct {
	// ConnectorName identifies which job ran.
	ConnectorName string

	// StartedAt is when the invocation started.
	StartedAt time.Time

	// EndedAt is when the invocation finished.
	EndedAt time.Time

	// Success indicates whether the run completed without error.
	Success bool

	// Error contains the failure message if Success is false.
	Error string

	// Stats holds the run counters for successful invocations.
	Stats RunStats
}
