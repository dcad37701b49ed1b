package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store := newTestStore(t)

	_, err := os.Stat(store.Path())
	require.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestCheckpointStore_GetMissingReturnsFresh(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cp, err := store.CheckpointStore().Get(ctx, "sec_filings")
	require.NoError(t, err)
	assert.Equal(t, "sec_filings", cp.ConnectorName)
	assert.Empty(t, cp.LastCursor)
	assert.Nil(t, cp.LastSince)
	assert.True(t, cp.UpdatedAt.IsZero())
}

func TestCheckpointStore_SetGetRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cps := store.CheckpointStore()

	since := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	err := cps.Set(ctx, domain.Checkpoint{
		ConnectorName: "spending_awards",
		LastCursor:    "3",
		LastSince:     &since,
		ETag:          `"abc123"`,
		Meta:          map[string]any{"window_start": "2026-01-14T12:00:00Z"},
	})
	require.NoError(t, err)

	got, err := cps.Get(ctx, "spending_awards")
	require.NoError(t, err)
	assert.Equal(t, "3", got.LastCursor)
	require.NotNil(t, got.LastSince)
	assert.True(t, got.LastSince.Equal(since))
	assert.Equal(t, `"abc123"`, got.ETag)
	assert.Equal(t, "2026-01-14T12:00:00Z", got.MetaString("window_start"))
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestCheckpointStore_SetReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cps := store.CheckpointStore()

	require.NoError(t, cps.Set(ctx, domain.Checkpoint{ConnectorName: "c", LastCursor: "1"}))
	require.NoError(t, cps.Set(ctx, domain.Checkpoint{ConnectorName: "c", LastCursor: "2"}))

	got, err := cps.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "2", got.LastCursor)

	all, err := cps.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRawDocumentStore_StoreIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	docs := store.RawDocumentStore()

	rec := domain.RawRecord{
		SourceType: "sec",
		SourceName: "edgar_current_filing",
		URL:        "https://example.com/filing",
		RecordID:   "accession-42",
		FetchedAt:  time.Now().UTC(),
		Title:      "Form 8-K",
		MIMEType:   "application/json",
		Text:       `{"form":"8-K"}`,
		HTTPStatus: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}

	id, inserted, err := docs.Store(ctx, rec, "batch-1")
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, id)

	// Same record ID from a later batch with a different URL dedupes.
	rec.URL = "https://example.com/filing?ref=feed"
	_, inserted, err = docs.Store(ctx, rec, "batch-2")
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRawDocumentStore_RejectsEmptyRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.RawDocumentStore().Store(ctx, domain.RawRecord{
		SourceType: "sec",
		SourceName: "feed",
		URL:        "https://example.com",
	}, "batch-1")
	assert.ErrorIs(t, err, domain.ErrEmptyRecord)
}

func TestRawDocumentStore_BinaryContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.RawRecord{
		SourceType: "congress",
		SourceName: "house_ptr_pdf",
		URL:        "https://example.com/1.pdf",
		RecordID:   "20025001",
		FetchedAt:  time.Now().UTC(),
		MIMEType:   "application/pdf",
		RawBytes:   []byte{0x25, 0x50, 0x44, 0x46},
		HTTPStatus: 200,
	}

	_, inserted, err := store.RawDocumentStore().Store(ctx, rec, "batch-1")
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestRunLedger_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ledger := store.RunLedger()

	require.NoError(t, ledger.StartRun(ctx, "run-1", "sec_filings"))

	run, err := ledger.LastRun(ctx, "sec_filings")
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, run.Status)
	assert.Nil(t, run.EndedAt)

	stats := domain.RunStats{Fetched: 5, Stored: 4, Deduped: 1}
	require.NoError(t, ledger.FinishRun(ctx, "run-1", domain.RunSuccess, stats, ""))

	run, err = ledger.LastRun(ctx, "sec_filings")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSuccess, run.Status)
	assert.Equal(t, stats, run.Stats)
	require.NotNil(t, run.EndedAt)
}

func TestRunLedger_FailedRunKeepsError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ledger := store.RunLedger()

	require.NoError(t, ledger.StartRun(ctx, "run-2", "contract_announcements"))
	require.NoError(t, ledger.FinishRun(ctx, "run-2", domain.RunFailed, domain.RunStats{Errors: 1}, "fetch batch: boom"))

	run, err := ledger.LastRun(ctx, "contract_announcements")
	require.NoError(t, err)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Equal(t, "fetch batch: boom", run.ErrorText)
}

func TestRunLedger_LastRunMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RunLedger().LastRun(context.Background(), "never_ran")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	job, err := store.JobStore().GetJob(context.Background(), "sec_filings")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestJobStore_SaveGetRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobs := store.JobStore()

	next := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
	err := jobs.SaveJob(ctx, &domain.ScheduledJob{
		ConnectorName: "sec_filings",
		Interval:      15 * time.Minute,
		Limit:         120,
		NextRun:       next,
		Enabled:       true,
	})
	require.NoError(t, err)

	job, err := jobs.GetJob(ctx, "sec_filings")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 15*time.Minute, job.Interval)
	assert.Equal(t, 120, job.Limit)
	assert.True(t, job.Enabled)
	assert.True(t, job.NextRun.Equal(next))

	all, err := jobs.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJobStore_PruneHistoryKeepsMostRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobs := store.JobStore()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, jobs.RecordResult(ctx, &domain.JobResult{
			ConnectorName: "sec_filings",
			StartedAt:     started,
			EndedAt:       started.Add(time.Second),
			Success:       true,
		}))
	}

	require.NoError(t, jobs.PruneHistory(ctx, 2))

	var remaining int
	err := store.db.QueryRow("SELECT COUNT(*) FROM job_history WHERE connector_name = 'sec_filings'").Scan(&remaining)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
