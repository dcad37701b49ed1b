package driven

import (
	"context"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// Connector fetches new raw records from one external source since a
// checkpoint. The set of sources is fixed and small; implementations are
// selected by a static registry keyed by connector name.
type Connector interface {
	// Name returns the connector's registry name.
	Name() string

	// FetchBatch reads from the checkpoint and the external source and
	// returns fetched records plus the checkpoint a successful run
	// should commit. It must not perform any persistent write itself;
	// durability is the orchestrator's job.
	//
	// limit bounds the amount of work attempted in one call, not
	// necessarily the exact record count returned. FetchBatch must make
	// forward progress on the watermark or cursor whenever records are
	// returned.
	FetchBatch(ctx context.Context, checkpoint domain.Checkpoint, limit int) ([]domain.RawRecord, domain.Checkpoint, error)
}
