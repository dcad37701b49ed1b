// Package usaspending ingests federal spending awards from the
// USAspending search API, paging through one time window at a time.
package usaspending

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/httpx"
)

// Name is the connector's registry name.
const Name = "spending_awards"

const defaultEndpoint = "https://api.usaspending.gov/api/v2/search/spending_by_award/"

// safetyDelta widens the query window backwards so late-arriving awards
// near the previous watermark are not missed.
const safetyDelta = 6 * time.Hour

// Ensure Connector implements the port.
var _ driven.Connector = (*Connector)(nil)

// Config narrows the award search to one agency when AgencyName is set.
type Config struct {
	AgencyName string
	AgencyTier string
	AgencyType string
}

// Connector pages through spending_by_award search results.
// The checkpoint cursor is the page number; the watermark is the
// query-window start. An empty page closes the window: the cursor
// resets to 1 and the watermark advances to now.
type Connector struct {
	client   *httpx.Client
	cfg      Config
	endpoint string
	now      func() time.Time
}

// New creates the spending-award connector.
func New(httpCfg httpx.Config, cfg Config) *Connector {
	return &Connector{
		client:   httpx.NewClient(httpCfg),
		cfg:      cfg,
		endpoint: defaultEndpoint,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FetchBatch fetches one result page and emits it as a single audit
// record carrying the raw JSON response and the request body.
func (c *Connector) FetchBatch(ctx context.Context, checkpoint domain.Checkpoint, limit int) ([]domain.RawRecord, domain.Checkpoint, error) {
	end := c.now()
	since := end.Add(-24 * time.Hour)
	if checkpoint.LastSince != nil {
		since = *checkpoint.LastSince
	}
	windowStart := since.Add(-safetyDelta)

	page := 1
	if n, err := strconv.Atoi(checkpoint.LastCursor); err == nil && n > 0 {
		page = n
	}

	pageSize := limit
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 1000 {
		pageSize = 1000
	}

	filters := map[string]any{
		"time_period": []map[string]string{{
			"date_type":  "action_date",
			"start_date": windowStart.Format("2006-01-02"),
			"end_date":   end.Format("2006-01-02"),
		}},
	}
	if c.cfg.AgencyName != "" {
		filters["agencies"] = []map[string]string{{
			"type": c.cfg.AgencyType,
			"tier": c.cfg.AgencyTier,
			"name": c.cfg.AgencyName,
		}}
	}

	body := map[string]any{
		"filters":   filters,
		"limit":     pageSize,
		"page":      page,
		"sort":      "Award Amount",
		"order":     "desc",
		"subawards": false,
	}

	resp, err := c.client.Post(ctx, c.endpoint, httpx.WithJSONBody(body))
	if err != nil {
		return nil, checkpoint, fmt.Errorf("spending_by_award page %d: %w", page, err)
	}

	recordID := fmt.Sprintf("%s:%s:page=%d",
		windowStart.Format("2006-01-02"), end.Format("2006-01-02"), page)

	rec := domain.RawRecord{
		SourceType:   "usaspending",
		SourceName:   "spending_by_award",
		URL:          c.endpoint,
		RecordID:     recordID,
		FetchedAt:    time.Now().UTC(),
		Title:        "USAspending spending_by_award page",
		MIMEType:     "application/json",
		Text:         resp.Text(),
		HTTPStatus:   resp.StatusCode,
		Headers:      resp.HeaderMap(),
		CanonicalURL: c.endpoint,
		Meta:         map[string]any{"request": body},
	}

	var parsed struct {
		Results []json.RawMessage `json:"results"`
	}
	more := false
	if err := json.Unmarshal(resp.Body, &parsed); err == nil {
		more = len(parsed.Results) > 0
	}

	meta := map[string]any{
		"window_start": windowStart.Format(time.RFC3339),
		"window_end":   end.Format(time.RFC3339),
	}

	next := domain.Checkpoint{ConnectorName: Name, Meta: meta}
	if more {
		// Window stays open; the next call fetches the following page.
		next.LastCursor = strconv.Itoa(page + 1)
		next.LastSince = checkpoint.LastSince
		if next.LastSince == nil {
			next.LastSince = &since
		}
	} else {
		// Empty page closes the window.
		next.LastCursor = "1"
		next.LastSince = &end
	}

	return []domain.RawRecord{rec}, next, nil
}

// Name returns the registry name.
func (c *Connector) Name() string {
	return Name
}
