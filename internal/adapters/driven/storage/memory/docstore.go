package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// StoredDocument is one persisted raw record plus its identity keys.
type StoredDocument struct {
	ID            string
	Record        domain.RawRecord
	ContentDigest string
	Fingerprint   string
	BatchID       string
}

// RawDocumentStore is an in-memory driven.RawDocumentStore keyed by
// document fingerprint.
type RawDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]StoredDocument
}

var _ driven.RawDocumentStore = (*RawDocumentStore)(nil)

// NewRawDocumentStore creates an empty raw document store.
func NewRawDocumentStore() *RawDocumentStore {
	return &RawDocumentStore{docs: make(map[string]StoredDocument)}
}

// Store inserts a record; a fingerprint collision is a no-op reported
// as inserted=false.
func (s *RawDocumentStore) Store(_ context.Context, rec domain.RawRecord, batchID string) (string, bool, error) {
	if !rec.HasContent() {
		return "", false, domain.ErrEmptyRecord
	}

	digest := domain.ContentDigest(&rec)
	fingerprint := domain.DocumentFingerprint(&rec, digest)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[fingerprint]; ok {
		return "", false, nil
	}

	id := uuid.New().String()
	s.docs[fingerprint] = StoredDocument{
		ID:            id,
		Record:        rec,
		ContentDigest: digest,
		Fingerprint:   fingerprint,
		BatchID:       batchID,
	}
	return id, true, nil
}

// Count returns the number of stored documents.
func (s *RawDocumentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Documents returns a snapshot of everything stored, for assertions.
func (s *RawDocumentStore) Documents() []StoredDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]StoredDocument, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
