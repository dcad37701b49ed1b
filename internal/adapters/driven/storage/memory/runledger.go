package memory

import (
	"context"
	"sync"
	"time"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// RunLedger is an in-memory driven.RunLedger.
type RunLedger struct {
	mu   sync.RWMutex
	runs []domain.Run
}

var _ driven.RunLedger = (*RunLedger)(nil)

// NewRunLedger creates an empty run ledger.
func NewRunLedger() *RunLedger {
	return &RunLedger{}
}

// StartRun inserts a RUNNING record.
func (l *RunLedger) StartRun(_ context.Context, runID, connectorName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, domain.Run{
		RunID:         runID,
		ConnectorName: connectorName,
		StartedAt:     time.Now().UTC(),
		Status:        domain.RunRunning,
	})
	return nil
}

// FinishRun updates a run to a terminal status.
func (l *RunLedger) FinishRun(_ context.Context, runID string, status domain.RunStatus, stats domain.RunStats, errText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.runs {
		if l.runs[i].RunID == runID {
			now := time.Now().UTC()
			l.runs[i].EndedAt = &now
			l.runs[i].Status = status
			l.runs[i].Stats = stats
			l.runs[i].ErrorText = errText
			return nil
		}
	}
	return domain.ErrNotFound
}

// LastRun returns the most recent run for a connector.
func (l *RunLedger) LastRun(_ context.Context, connectorName string) (*domain.Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.runs) - 1; i >= 0; i-- {
		if l.runs[i].ConnectorName == connectorName {
			run := l.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Runs returns a snapshot of all runs, for assertions.
func (l *RunLedger) Runs() []domain.Run {
	l.mu.RLock()
	defer l.mu.RUnlock()
	runs := make([]domain.Run, len(l.runs))
	copy(runs, l.runs)
	return runs
}
