// Package services contains the core orchestration logic: single
// connector runs and the periodic scheduler.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/core/ports/driving"
	"github.com/catalyst-labs/radar/internal/logger"
)

// Ensure Runner implements the interface.
var _ driving.IngestRunner = (*Runner)(nil)

// Runner drives one connector invocation at a time: load checkpoint,
// fetch, store each record, advance checkpoint, record the outcome.
type Runner struct {
	connectors  map[string]driven.Connector
	checkpoints driven.CheckpointStore
	docs        driven.RawDocumentStore
	ledger      driven.RunLedger
}

// NewRunner creates a runner over the registered connectors and stores.
func NewRunner(
	connectors map[string]driven.Connector,
	checkpoints driven.CheckpointStore,
	docs driven.RawDocumentStore,
	ledger driven.RunLedger,
) *Runner {
	return &Runner{
		connectors:  connectors,
		checkpoints: checkpoints,
		docs:        docs,
		ledger:      ledger,
	}
}

// Run performs one checkpointed ingestion run. Checkpoint advancement
// is the commit point: it happens only after every record of the batch
// has been durably stored, so a crash in between is safe to resume —
// reprocessing already-stored records dedupes on the fingerprint.
// On any failure the run is marked FAILED, the checkpoint is left
// unchanged, and the error is returned to the caller.
func (r *Runner) Run(ctx context.Context, connectorName string, limit int) (domain.RunStats, error) {
	var stats domain.RunStats

	connector, ok := r.connectors[connectorName]
	if !ok {
		return stats, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorName)
	}

	runID := uuid.New().String()

	cp, err := r.checkpoints.Get(ctx, connectorName)
	if err != nil {
		return stats, fmt.Errorf("load checkpoint: %w", err)
	}
	logger.Debug("run %s: checkpoint cursor=%q since=%v", connectorName, cp.LastCursor, cp.LastSince)

	if err := r.ledger.StartRun(ctx, runID, connectorName); err != nil {
		return stats, fmt.Errorf("start run: %w", err)
	}

	records, next, err := connector.FetchBatch(ctx, cp, limit)
	if err != nil {
		stats.Errors++
		r.finishFailed(ctx, runID, stats, err)
		return stats, fmt.Errorf("fetch batch: %w", err)
	}
	stats.Fetched = len(records)

	for i := range records {
		_, inserted, err := r.docs.Store(ctx, records[i], runID)
		if err != nil {
			stats.Errors++
			r.finishFailed(ctx, runID, stats, err)
			return stats, fmt.Errorf("store record: %w", err)
		}
		if inserted {
			stats.Stored++
		} else {
			stats.Deduped++
		}
	}

	if err := r.checkpoints.Set(ctx, next); err != nil {
		stats.Errors++
		r.finishFailed(ctx, runID, stats, err)
		return stats, fmt.Errorf("advance checkpoint: %w", err)
	}

	if err := r.ledger.FinishRun(ctx, runID, domain.RunSuccess, stats, ""); err != nil {
		return stats, fmt.Errorf("finish run: %w", err)
	}

	logger.Info("run %s: fetched=%d stored=%d deduped=%d", connectorName, stats.Fetched, stats.Stored, stats.Deduped)
	return stats, nil
}

// DryRun executes the connector's fetch and counts results. It reads
// the current checkpoint but writes nothing: no stored documents, no
// checkpoint advance, no ledger entry.
func (r *Runner) DryRun(ctx context.Context, connectorName string, limit int) (domain.RunStats, error) {
	var stats domain.RunStats

	connector, ok := r.connectors[connectorName]
	if !ok {
		return stats, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorName)
	}

	cp, err := r.checkpoints.Get(ctx, connectorName)
	if err != nil {
		return stats, fmt.Errorf("load checkpoint: %w", err)
	}

	records, next, err := connector.FetchBatch(ctx, cp, limit)
	if err != nil {
		stats.Errors++
		return stats, fmt.Errorf("fetch batch: %w", err)
	}
	stats.Fetched = len(records)

	logger.Info("dry run %s: fetched=%d next cursor=%q since=%v",
		connectorName, stats.Fetched, next.LastCursor, next.LastSince)
	return stats, nil
}

// finishFailed marks the run FAILED, best-effort.
func (r *Runner) finishFailed(ctx context.Context, runID string, stats domain.RunStats, cause error) {
	if err := r.ledger.FinishRun(ctx, runID, domain.RunFailed, stats, cause.Error()); err != nil {
		logger.Warn("finish failed run %s: %v", runID, err)
	}
}
