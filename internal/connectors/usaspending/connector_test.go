package usaspending

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/httpx"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc, cfg Config) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(httpx.Config{UserAgent: "test"}, cfg)
	c.endpoint = srv.URL
	c.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestFetchBatch_OpensWindowAndPages(t *testing.T) {
	var gotBody map[string]any
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"results":[{"internal_id":1,"Recipient Name":"Acme"}]}`))
	}, Config{AgencyName: "Department of Defense", AgencyTier: "toptier", AgencyType: "awarding"})

	records, next, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 100)
	require.NoError(t, err)

	// One audit record per page.
	require.Len(t, records, 1)
	assert.Equal(t, "usaspending", records[0].SourceType)
	assert.Equal(t, "spending_by_award", records[0].SourceName)
	assert.Contains(t, records[0].RecordID, "page=1")

	// No checkpoint yet: the window opens 24h back, widened by the
	// safety delta, ending now.
	filters := gotBody["filters"].(map[string]any)
	period := filters["time_period"].([]any)[0].(map[string]any)
	assert.Equal(t, "2026-01-30", period["start_date"])
	assert.Equal(t, "2026-02-01", period["end_date"])
	agencies := filters["agencies"].([]any)[0].(map[string]any)
	assert.Equal(t, "Department of Defense", agencies["name"])
	assert.Equal(t, float64(1), gotBody["page"])

	// A non-empty page keeps the window open and advances the page.
	assert.Equal(t, "2", next.LastCursor)
	require.NotNil(t, next.LastSince)
	assert.True(t, next.LastSince.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
}

func TestFetchBatch_EmptyPageClosesWindow(t *testing.T) {
	var gotPage float64
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPage = body["page"].(float64)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, Config{})

	since := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	cp := domain.Checkpoint{ConnectorName: Name, LastCursor: "3", LastSince: &since}

	_, next, err := c.FetchBatch(context.Background(), cp, 100)
	require.NoError(t, err)
	assert.Equal(t, float64(3), gotPage)

	// The window closes: cursor resets, watermark advances to now.
	assert.Equal(t, "1", next.LastCursor)
	require.NotNil(t, next.LastSince)
	assert.True(t, next.LastSince.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFetchBatch_ClampsPageSize(t *testing.T) {
	var gotLimit float64
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotLimit = body["limit"].(float64)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, Config{})

	_, _, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 5000)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), gotLimit)

	_, _, err = c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(1), gotLimit)
}

func TestFetchBatch_NoAgencyFilterWhenUnset(t *testing.T) {
	var gotBody map[string]any
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, Config{})

	_, _, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 10)
	require.NoError(t, err)

	filters := gotBody["filters"].(map[string]any)
	_, hasAgencies := filters["agencies"]
	assert.False(t, hasAgencies)
}

func TestFetchBatch_RecordCarriesWindowMeta(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, Config{})

	_, next, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, next.MetaString("window_start"))
	assert.NotEmpty(t, next.MetaString("window_end"))
}
