package driven

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// CheckpointStore persists per-connector resumption state.
type CheckpointStore interface {
	// Get retrieves the checkpoint for a connector. Returns a fresh
	// empty checkpoint when none exists; absence is not an error.
	Get(ctx context.Context, connectorName string) (domain.Checkpoint, error)

	// Set performs an atomic upsert keyed by connector name. The
	// orchestrator calls Set only after all records from a batch have
	// been durably stored; checkpoint advancement is the commit point.
	Set(ctx context.Context, cp domain.Checkpoint) error

	// List returns all checkpoints ordered by connector name.
	List(ctx context.Context) ([]domain.Checkpoint, error)
}
