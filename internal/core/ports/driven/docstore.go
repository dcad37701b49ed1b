package driven

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// RawDocumentStore is the content-addressed, idempotent, append-only
// store of fetched documents.
type RawDocumentStore interface {
	// Store computes the document fingerprint and content digest and
	// inserts the record. A duplicate fingerprint is a no-op, reported
	// as inserted=false with no error, so call sites can count "stored"
	// vs "deduped". batchID is the orchestrator run that produced the
	// record, kept for audit.
	Store(ctx context.Context, rec domain.RawRecord, batchID string) (id string, inserted bool, err error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
