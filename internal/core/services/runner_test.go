package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-labs/radar/internal/adapters/driven/storage/memory"
	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// stubConnector returns canned batches and records what it was asked.
type stubConnector struct {
	name    string
	records []domain.RawRecord
	next    domain.Checkpoint
	err     error

	calls  int
	lastCp domain.Checkpoint
}

var _ driven.Connector = (*stubConnector)(nil)

func (c *stubConnector) Name() string { return c.name }

func (c *stubConnector) FetchBatch(_ context.Context, cp domain.Checkpoint, _ int) ([]domain.RawRecord, domain.Checkpoint, error) {
	c.calls++
	c.lastCp = cp
	if c.err != nil {
		return nil, cp, c.err
	}
	return c.records, c.next, nil
}

type runnerFixture struct {
	runner      *Runner
	connector   *stubConnector
	checkpoints *memory.CheckpointStore
	docs        *memory.RawDocumentStore
	ledger      *memory.RunLedger
}

func newRunnerFixture(t *testing.T, connector *stubConnector) runnerFixture {
	t.Helper()
	f := runnerFixture{
		connector:   connector,
		checkpoints: memory.NewCheckpointStore(),
		docs:        memory.NewRawDocumentStore(),
		ledger:      memory.NewRunLedger(),
	}
	f.runner = NewRunner(
		map[string]driven.Connector{connector.name: connector},
		f.checkpoints, f.docs, f.ledger,
	)
	return f
}

func makeRecord(id string) domain.RawRecord {
	return domain.RawRecord{
		SourceType: "sec",
		SourceName: "edgar_current_filing",
		URL:        "https://example.com/" + id,
		RecordID:   id,
		FetchedAt:  time.Now().UTC(),
		Title:      "Filing " + id,
		MIMEType:   "application/json",
		Text:       `{"id":"` + id + `"}`,
		HTTPStatus: 200,
	}
}

func TestRun_Success(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	connector := &stubConnector{
		name:    "sec_filings",
		records: []domain.RawRecord{makeRecord("a"), makeRecord("b")},
		next:    domain.Checkpoint{ConnectorName: "sec_filings", LastSince: &since},
	}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	stats, err := f.runner.Run(ctx, "sec_filings", 50)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStats{Fetched: 2, Stored: 2}, stats)

	// Checkpoint advanced to the connector's next state.
	cp, err := f.checkpoints.Get(ctx, "sec_filings")
	require.NoError(t, err)
	require.NotNil(t, cp.LastSince)
	assert.True(t, cp.LastSince.Equal(since))

	run, err := f.ledger.LastRun(ctx, "sec_filings")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSuccess, run.Status)
	assert.Equal(t, stats, run.Stats)
}

func TestRun_RerunDedupes(t *testing.T) {
	connector := &stubConnector{
		name:    "sec_filings",
		records: []domain.RawRecord{makeRecord("a"), makeRecord("b")},
		next:    domain.Checkpoint{ConnectorName: "sec_filings"},
	}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, "sec_filings", 50)
	require.NoError(t, err)

	stats, err := f.runner.Run(ctx, "sec_filings", 50)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStats{Fetched: 2, Deduped: 2}, stats)

	count, err := f.docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRun_PassesCheckpointToConnector(t *testing.T) {
	connector := &stubConnector{name: "c", next: domain.Checkpoint{ConnectorName: "c", LastCursor: "7"}}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, "c", 10)
	require.NoError(t, err)

	_, err = f.runner.Run(ctx, "c", 10)
	require.NoError(t, err)
	assert.Equal(t, "7", connector.lastCp.LastCursor)
}

func TestRun_UnknownConnector(t *testing.T) {
	f := newRunnerFixture(t, &stubConnector{name: "known"})

	_, err := f.runner.Run(context.Background(), "unknown", 10)
	assert.ErrorIs(t, err, domain.ErrUnknownConnector)
	assert.Empty(t, f.ledger.Runs())
}

func TestRun_FetchFailureLeavesCheckpoint(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	connector := &stubConnector{name: "c", err: errors.New("upstream down")}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	prior := domain.Checkpoint{ConnectorName: "c", LastCursor: "5", LastSince: &since}
	require.NoError(t, f.checkpoints.Set(ctx, prior))

	stats, err := f.runner.Run(ctx, "c", 10)
	require.Error(t, err)
	assert.Equal(t, 1, stats.Errors)

	// The prior checkpoint is untouched.
	cp, err := f.checkpoints.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "5", cp.LastCursor)

	run, lerr := f.ledger.LastRun(ctx, "c")
	require.NoError(t, lerr)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Contains(t, run.ErrorText, "upstream down")
}

func TestRun_StoreFailureLeavesCheckpoint(t *testing.T) {
	// A record with no content fails storage mid-batch.
	empty := domain.RawRecord{SourceType: "sec", SourceName: "feed", URL: "https://example.com/x"}
	connector := &stubConnector{
		name:    "c",
		records: []domain.RawRecord{makeRecord("a"), empty},
		next:    domain.Checkpoint{ConnectorName: "c", LastCursor: "next"},
	}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, "c", 10)
	require.ErrorIs(t, err, domain.ErrEmptyRecord)

	cp, cerr := f.checkpoints.Get(ctx, "c")
	require.NoError(t, cerr)
	assert.Empty(t, cp.LastCursor)

	run, lerr := f.ledger.LastRun(ctx, "c")
	require.NoError(t, lerr)
	assert.Equal(t, domain.RunFailed, run.Status)
}

func TestDryRun_WritesNothing(t *testing.T) {
	connector := &stubConnector{
		name:    "c",
		records: []domain.RawRecord{makeRecord("a")},
		next:    domain.Checkpoint{ConnectorName: "c", LastCursor: "9"},
	}
	f := newRunnerFixture(t, connector)
	ctx := context.Background()

	stats, err := f.runner.DryRun(ctx, "c", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Fetched)

	count, err := f.docs.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	cp, err := f.checkpoints.Get(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, cp.LastCursor)

	assert.Empty(t, f.ledger.Runs())
}
