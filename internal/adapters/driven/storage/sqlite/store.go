// Package sqlite implements the durable stores on a single SQLite
// database: checkpoints, raw documents, the run ledger, and scheduler
// job state.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/catalyst-labs/radar/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// durable store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.radar/data/radar.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".radar", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "radar.db")

	// WAL mode so concurrent connector runs can write without
	// tripping over each other.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CheckpointStore returns a CheckpointStore backed by this store.
func (s *Store) CheckpointStore() driven.CheckpointStore {
	return &checkpointStore{store: s}
}

// RawDocumentStore returns a RawDocumentStore backed by this store.
func (s *Store) RawDocumentStore() driven.RawDocumentStore {
	return &rawDocumentStore{store: s}
}

// RunLedger returns a RunLedger backed by this store.
func (s *Store) RunLedger() driven.RunLedger {
	return &runLedger{store: s}
}

// JobStore returns a JobStore backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Checkpoint Store ====================

// checkpointStore implements driven.CheckpointStore.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

// Get retrieves the checkpoint for a connector, or a fresh empty one.
func (s *checkpointStore) Get(ctx context.Context, connectorName string) (domain.Checkpoint, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT connector_name, last_cursor, last_since_utc, etag, meta_json, updated_at_utc
		FROM ingestion_checkpoints WHERE connector_name = ?
	`, connectorName)

	cp, err := scanCheckpoint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewCheckpoint(connectorName), nil
		}
		return domain.Checkpoint{}, fmt.Errorf("scanning checkpoint: %w", err)
	}
	return cp, nil
}

// Set atomically upserts the checkpoint keyed by connector name.
func (s *checkpointStore) Set(ctx context.Context, cp domain.Checkpoint) error {
	metaJSON, err := json.Marshal(orEmpty(cp.Meta))
	if err != nil {
		return fmt.Errorf("marshalling meta: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_checkpoints (connector_name, last_cursor, last_since_utc, etag, meta_json, updated_at_utc)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(connector_name) DO UPDATE SET
			last_cursor = excluded.last_cursor,
			last_since_utc = excluded.last_since_utc,
			etag = excluded.etag,
			meta_json = excluded.meta_json,
			updated_at_utc = excluded.updated_at_utc
	`, cp.ConnectorName, nullString(cp.LastCursor), nullTimePtr(cp.LastSince),
		nullString(cp.ETag), string(metaJSON), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

// List returns all checkpoints ordered by connector name.
func (s *checkpointStore) List(ctx context.Context) ([]domain.Checkpoint, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT connector_name, last_cursor, last_since_utc, etag, meta_json, updated_at_utc
		FROM ingestion_checkpoints ORDER BY connector_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []domain.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning checkpoint: %w", err)
		}
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner) (domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var lastCursor, etag sql.NullString
	var lastSince, updatedAt sql.NullTime
	var metaJSON string

	if err := row.Scan(&cp.ConnectorName, &lastCursor, &lastSince, &etag, &metaJSON, &updatedAt); err != nil {
		return domain.Checkpoint{}, err
	}

	cp.LastCursor = lastCursor.String
	cp.ETag = etag.String
	if lastSince.Valid {
		t := lastSince.Time.UTC()
		cp.LastSince = &t
	}
	if updatedAt.Valid {
		cp.UpdatedAt = updatedAt.Time.UTC()
	}
	if err := json.Unmarshal([]byte(metaJSON), &cp.Meta); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("unmarshaling meta: %w", err)
	}
	return cp, nil
}

// ==================== Raw Document Store ====================

// rawDocumentStore implements driven.RawDocumentStore.
type rawDocumentStore struct {
	store *Store
}

var _ driven.RawDocumentStore = (*rawDocumentStore)(nil)

// Store inserts a record keyed by its document fingerprint.
// A fingerprint collision is a silent no-op reported as inserted=false.
func (s *rawDocumentStore) Store(ctx context.Context, rec domain.RawRecord, batchID string) (string, bool, error) {
	if !rec.HasContent() {
		return "", false, domain.ErrEmptyRecord
	}

	contentDigest := domain.ContentDigest(&rec)
	fingerprint := domain.DocumentFingerprint(&rec, contentDigest)

	// The original record ID and connector meta ride along with the
	// response headers for audit.
	headersEnvelope := map[string]any{
		"record_id":    rec.RecordID,
		"meta":         orEmpty(rec.Meta),
		"resp_headers": rec.Headers,
	}
	headersJSON, err := json.Marshal(headersEnvelope)
	if err != nil {
		return "", false, fmt.Errorf("marshalling headers: %w", err)
	}

	language, _ := rec.Meta["language"].(string)
	id := uuid.New().String()

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO raw_documents (
			raw_document_id, source_type, source_name, source_url, canonical_url,
			retrieved_at_utc, published_at_utc, title, mime_type,
			language, http_status, headers_json, raw_content, text_content,
			content_sha256, doc_fingerprint, ingest_batch_id, parse_status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'RAW')
		ON CONFLICT(doc_fingerprint) DO NOTHING
	`, id, rec.SourceType, rec.SourceName, rec.URL, nullString(rec.CanonicalURL),
		rec.FetchedAt.UTC(), nullTimePtr(rec.PublishedAt), nullString(rec.Title), nullString(rec.MIMEType),
		nullString(language), rec.HTTPStatus, string(headersJSON), rec.RawBytes, nullString(rec.Text),
		contentDigest, fingerprint, batchID)

	if err != nil {
		return "", false, fmt.Errorf("storing raw document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("checking insert: %w", err)
	}
	if affected == 0 {
		return "", false, nil
	}
	return id, true, nil
}

// Count returns the number of stored documents.
func (s *rawDocumentStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM raw_documents").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting raw documents: %w", err)
	}
	return n, nil
}

// ==================== Run Ledger ====================

// runLedger implements driven.RunLedger.
type runLedger struct {
	store *Store
}

var _ driven.RunLedger = (*runLedger)(nil)

// StartRun inserts a RUNNING record.
func (s *runLedger) StartRun(ctx context.Context, runID, connectorName string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (run_id, connector_name, started_at_utc, status, stats_json)
		VALUES (?, ?, ?, 'RUNNING', '{}')
	`, runID, connectorName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("starting run: %w", err)
	}
	return nil
}

// FinishRun updates a run to a terminal status.
func (s *runLedger) FinishRun(ctx context.Context, runID string, status domain.RunStatus, stats domain.RunStats, errText string) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		UPDATE ingestion_runs
		SET ended_at_utc = ?, status = ?, stats_json = ?, error_text = ?
		WHERE run_id = ?
	`, time.Now().UTC(), string(status), string(statsJSON), nullString(errText), runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// LastRun returns the most recent run for a connector.
func (s *runLedger) LastRun(ctx context.Context, connectorName string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, connector_name, started_at_utc, ended_at_utc, status, stats_json, error_text
		FROM ingestion_runs
		WHERE connector_name = ?
		ORDER BY started_at_utc DESC
		LIMIT 1
	`, connectorName)

	var run domain.Run
	var endedAt sql.NullTime
	var errText sql.NullString
	var statsJSON string
	var status string

	if err := row.Scan(&run.RunID, &run.ConnectorName, &run.StartedAt, &endedAt, &status, &statsJSON, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	run.ErrorText = errText.String
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		run.EndedAt = &t
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling stats: %w", err)
	}
	return &run, nil
}

// ==================== Job Store ====================

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// GetJob retrieves a job by connector name, or nil when absent.
func (s *jobStore) GetJob(ctx context.Context, connectorName string) (*domain.ScheduledJob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT connector_name, interval_secs, batch_limit, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_jobs WHERE connector_name = ?
	`, connectorName)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	return job, nil
}

// SaveJob stores or updates a job.
func (s *jobStore) SaveJob(ctx context.Context, job *domain.ScheduledJob) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (connector_name, interval_secs, batch_limit, last_run, next_run, last_error, last_success, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(connector_name) DO UPDATE SET
			interval_secs = excluded.interval_secs,
			batch_limit = excluded.batch_limit,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, job.ConnectorName, int(job.Interval.Seconds()), job.Limit,
		nullTime(job.LastRun), nullTime(job.NextRun), nullString(job.LastError),
		nullTime(job.LastSuccess), job.Enabled)
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}

// ListJobs returns all jobs.
func (s *jobStore) ListJobs(ctx context.Context) ([]domain.ScheduledJob, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT connector_name, interval_secs, batch_limit, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_jobs ORDER BY connector_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// RecordResult appends a job execution result to the history.
func (s *jobStore) RecordResult(ctx context.Context, result *domain.JobResult) error {
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO job_history (connector_name, started_at, ended_at, success, error, stats_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.ConnectorName, result.StartedAt.UTC(), result.EndedAt.UTC(),
		result.Success, nullString(result.Error), string(statsJSON))
	if err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}

// PruneHistory keeps only the most recent keepPerJob results per job.
func (s *jobStore) PruneHistory(ctx context.Context, keepPerJob int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM job_history
		WHERE id NOT IN (
			SELECT id FROM job_history AS jh
			WHERE (
				SELECT COUNT(*) FROM job_history AS newer
				WHERE newer.connector_name = jh.connector_name
				  AND newer.started_at > jh.started_at
			) < ?
		)
	`, keepPerJob)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}

func scanJob(row rowScanner) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	var intervalSecs int
	var lastRun, nextRun, lastSuccess sql.NullTime
	var lastError sql.NullString

	if err := row.Scan(&job.ConnectorName, &intervalSecs, &job.Limit,
		&lastRun, &nextRun, &lastError, &lastSuccess, &job.Enabled); err != nil {
		return nil, err
	}

	job.Interval = time.Duration(intervalSecs) * time.Second
	job.LastError = lastError.String
	if lastRun.Valid {
		job.LastRun = lastRun.Time.UTC()
	}
	if nextRun.Valid {
		job.NextRun = nextRun.Time.UTC()
	}
	if lastSuccess.Valid {
		job.LastSuccess = lastSuccess.Time.UTC()
	}
	return &job, nil
}

// ==================== Helpers ====================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
