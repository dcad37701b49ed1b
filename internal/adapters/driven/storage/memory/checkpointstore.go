// Package memory provides in-memory implementations of the driven
// store ports, used in tests and dry wiring.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// CheckpointStore is an in-memory driven.CheckpointStore.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]domain.Checkpoint
}

var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates an empty checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: make(map[string]domain.Checkpoint)}
}

// Get retrieves the checkpoint for a connector, or a fresh empty one.
func (s *CheckpointStore) Get(_ context.Context, connectorName string) (domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cp, ok := s.checkpoints[connectorName]; ok {
		return cp, nil
	}
	return domain.NewCheckpoint(connectorName), nil
}

// Set upserts the checkpoint keyed by connector name.
func (s *CheckpointStore) Set(_ context.Context, cp domain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.ConnectorName] = cp
	return nil
}

// List returns all checkpoints ordered by connector name.
func (s *CheckpointStore) List(_ context.Context) ([]domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cps := make([]domain.Checkpoint, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		cps = append(cps, cp)
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i].ConnectorName < cps[j].ConnectorName })
	return cps, nil
}
