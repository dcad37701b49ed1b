package driven

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// RunLedger records connector invocations for observability and crash
// forensics. It is never consulted for correctness.
type RunLedger interface {
	// StartRun inserts a RUNNING record.
	StartRun(ctx context.Context, runID, connectorName string) error

	// FinishRun updates a run to a terminal status with accumulated
	// stats and an optional error message.
	FinishRun(ctx context.Context, runID string, status domain.RunStatus, stats domain.RunStats, errText string) error

	// LastRun returns the most recent run for a connector, or
	// domain.ErrNotFound when the connector has never run.
	LastRun(ctx context.Context, connectorName string) (*domain.Run, error)
}
