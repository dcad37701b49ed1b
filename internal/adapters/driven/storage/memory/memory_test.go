package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

func TestRawDocumentStore_DedupesByFingerprint(t *testing.T) {
	store := NewRawDocumentStore()
	ctx := context.Background()

	rec := domain.RawRecord{
		SourceType: "sec",
		SourceName: "edgar_current_filing",
		URL:        "https://example.com/a",
		RecordID:   "accession-1",
		Text:       "body",
	}

	id, inserted, err := store.Store(ctx, rec, "batch-1")
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, id)

	_, inserted, err = store.Store(ctx, rec, "batch-2")
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, store.Documents(), 1)
}

func TestRawDocumentStore_RejectsEmptyRecord(t *testing.T) {
	store := NewRawDocumentStore()

	_, _, err := store.Store(context.Background(), domain.RawRecord{URL: "https://x"}, "b")
	assert.ErrorIs(t, err, domain.ErrEmptyRecord)
}

func TestCheckpointStore_RoundTrip(t *testing.T) {
	store := NewCheckpointStore()
	ctx := context.Background()

	cp, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, cp.LastCursor)

	require.NoError(t, store.Set(ctx, domain.Checkpoint{ConnectorName: "c", LastCursor: "5"}))

	cp, err = store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "5", cp.LastCursor)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunLedger_RoundTrip(t *testing.T) {
	ledger := NewRunLedger()
	ctx := context.Background()

	require.NoError(t, ledger.StartRun(ctx, "r1", "c"))
	require.NoError(t, ledger.FinishRun(ctx, "r1", domain.RunSuccess, domain.RunStats{Fetched: 1}, ""))

	run, err := ledger.LastRun(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSuccess, run.Status)

	assert.ErrorIs(t, ledger.FinishRun(ctx, "missing", domain.RunFailed, domain.RunStats{}, "x"), domain.ErrNotFound)

	_, err = ledger.LastRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_PruneHistory(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordResult(ctx, &domain.JobResult{
			ConnectorName: "c",
			StartedAt:     base.Add(time.Duration(i) * time.Minute),
			Success:       true,
		}))
	}
	require.NoError(t, store.RecordResult(ctx, &domain.JobResult{ConnectorName: "other", StartedAt: base}))

	require.NoError(t, store.PruneHistory(ctx, 2))

	history := store.History()
	perJob := make(map[string]int)
	for _, h := range history {
		perJob[h.ConnectorName]++
	}
	assert.Equal(t, 2, perJob["c"])
	assert.Equal(t, 1, perJob["other"])

	// The newest results survive, in chronological order.
	var latest time.Time
	for _, h := range history {
		if h.ConnectorName == "c" {
			latest = h.StartedAt
		}
	}
	assert.True(t, latest.Equal(base.Add(4*time.Minute)))
}
