package driving

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// IngestRunner drives a single connector invocation.
type IngestRunner interface {
	// Run performs one checkpointed ingestion run: load checkpoint,
	// fetch, store each record, advance checkpoint, record the run
	// outcome. On failure the checkpoint is left unchanged and the
	// error is returned.
	Run(ctx context.Context, connectorName string, limit int) (domain.RunStats, error)

	// DryRun executes the connector's fetch and counts results without
	// touching the checkpoint store, raw document store, or run ledger.
	DryRun(ctx context.Context, connectorName string, limit int) (domain.RunStats, error)
}
