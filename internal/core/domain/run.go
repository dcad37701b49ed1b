package domain

import "time"

// RunStatus is the lifecycle state of an ingestion run.
type RunStatus string

const (
	// RunRunning marks a run that has started and not yet finished.
	RunRunning RunStatus = "RUNNING"

	// RunSuccess marks a run that completed and advanced its checkpoint.
	RunSuccess RunStatus = "SUCCESS"

	// RunFailed marks a run that aborted without advancing its checkpoint.
	RunFailed RunStatus = "FAILED"
)

// RunStats counts the outcomes of one connector invocation.
type RunStats struct {
	// Fetched is the number of records the connector returned.
	Fetched int `json:"fetched"`

	// Stored is the number of records newly persisted.
	Stored int `json:"stored"`

	// Deduped is the number of records skipped as fingerprint duplicates.
	Deduped int `json:"deduped"`

	// Errors is the number of failures observed during the run.
	Errors int `json:"errors"`
}

// Run records one orchestrator invocation of one connector,
// for observability and crash forensics. Not consulted for correctness.
type Run struct {
	// RunID is the unique identifier (also used as the ingest batch ID).
	RunID string

	// ConnectorName identifies the connector that was invoked.
	ConnectorName string

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run reached a terminal status.
	EndedAt *time.Time

	// Status is the lifecycle state.
	Status RunStatus

	// Stats holds the accumulated counters.
	Stats RunStats

	// ErrorText is the failure message for FAILED runs.
	ErrorText string
}
