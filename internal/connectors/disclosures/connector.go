// Package disclosures ingests legislator financial disclosures: the
// senate bulk database download plus house periodic transaction report
// PDFs discovered by sequentially probing numeric filing IDs.
package disclosures

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/httpx"
	"github.com/catalyst-labs/radar/internal/logger"
	"github.com/catalyst-labs/radar/internal/ratelimit"
)

// Name is the connector's registry name.
const Name = "legislator_disclosures"

// metaLastCheckedID is the checkpoint meta key for the house ID scan.
const metaLastCheckedID = "house_last_checked_id"

// Ensure Connector implements the port.
var _ driven.Connector = (*Connector)(nil)

// Config holds the source locations and probe parameters.
type Config struct {
	// SenateURL is the disclosure homepage; the bulk download link is
	// re-discovered from it every call, never checkpointed.
	SenateURL string

	// HouseYear is the PTR filing year being scanned.
	HouseYear int

	// StartID is the first candidate filing ID for a fresh checkpoint.
	StartID int

	// RatePerSec bounds the ID probe rate. Values below 0.05 are
	// raised to 0.05 so a misconfiguration cannot stall the scan.
	RatePerSec float64
}

// Connector fetches the senate bulk download and scans house PTR IDs.
// The ID scan is deliberately serial so all probes share one bucket.
type Connector struct {
	client  *httpx.Client
	cfg     Config
	bucket  *ratelimit.Bucket
	baseURL string
}

// New creates the disclosure connector.
func New(httpCfg httpx.Config, cfg Config) *Connector {
	if cfg.RatePerSec < 0.05 {
		cfg.RatePerSec = 0.05
	}
	return &Connector{
		client:  httpx.NewClient(httpCfg),
		cfg:     cfg,
		bucket:  ratelimit.New(cfg.RatePerSec, 1),
		baseURL: "https://disclosures-clerk.house.gov/public_disc/ptr-pdfs",
	}
}

// Name returns the registry name.
func (c *Connector) Name() string {
	return Name
}

func (c *Connector) ptrURL(filingID int) string {
	return fmt.Sprintf("%s/%d/%d.pdf", c.baseURL, c.cfg.HouseYear, filingID)
}

// FetchBatch emits the senate bulk download when a link is found, then
// probes limit sequential house filing IDs starting after the cursor.
// A missing ID is an expected outcome, not an error; the cursor
// advances to the last ID probed regardless of how many were accepted.
func (c *Connector) FetchBatch(ctx context.Context, checkpoint domain.Checkpoint, limit int) ([]domain.RawRecord, domain.Checkpoint, error) {
	var records []domain.RawRecord

	downloadURL, err := c.discoverSenateDownload(ctx)
	if err != nil {
		return nil, checkpoint, fmt.Errorf("discover senate download: %w", err)
	}
	if downloadURL != "" {
		resp, err := c.client.Get(ctx, downloadURL)
		if err != nil {
			return nil, checkpoint, fmt.Errorf("fetch senate download: %w", err)
		}
		mime := resp.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		records = append(records, domain.RawRecord{
			SourceType:   "congress",
			SourceName:   "senate_disclosure_db",
			URL:          downloadURL,
			RecordID:     downloadURL,
			FetchedAt:    time.Now().UTC(),
			Title:        "Senate disclosure database download",
			MIMEType:     mime,
			RawBytes:     resp.Body,
			HTTPStatus:   resp.StatusCode,
			Headers:      resp.HeaderMap(),
			CanonicalURL: downloadURL,
			Meta:         map[string]any{"kind": "bulk_db"},
		})
	} else {
		logger.Warn("disclosures: no senate download link found")
	}

	cursor := c.cursorFrom(checkpoint)
	lastChecked := cursor

	probes := limit
	if probes < 1 {
		probes = 1
	}

	for i := 0; i < probes; i++ {
		filingID := cursor + 1 + i
		lastChecked = filingID
		url := c.ptrURL(filingID)

		if err := c.bucket.Acquire(ctx, 1); err != nil {
			return nil, checkpoint, err
		}

		// Existence check before the full fetch. Absence is expected
		// during a forward scan and never retried as an error.
		head, err := c.client.Head(ctx, url)
		if err != nil {
			return nil, checkpoint, fmt.Errorf("probe filing %d: %w", filingID, err)
		}
		if head.StatusCode != 200 {
			continue
		}

		resp, err := c.client.Get(ctx, url)
		if err != nil {
			return nil, checkpoint, fmt.Errorf("fetch filing %d: %w", filingID, err)
		}
		if resp.StatusCode != 200 {
			continue
		}

		records = append(records, domain.RawRecord{
			SourceType:   "congress",
			SourceName:   "house_ptr_pdf",
			URL:          url,
			RecordID:     strconv.Itoa(filingID),
			FetchedAt:    time.Now().UTC(),
			Title:        fmt.Sprintf("House PTR %d #%d", c.cfg.HouseYear, filingID),
			MIMEType:     "application/pdf",
			RawBytes:     resp.Body,
			HTTPStatus:   resp.StatusCode,
			Headers:      resp.HeaderMap(),
			CanonicalURL: url,
			Meta:         map[string]any{"kind": "ptr_pdf", "year": c.cfg.HouseYear, "filing_id": filingID},
		})
	}

	meta := make(map[string]any, len(checkpoint.Meta)+4)
	for k, v := range checkpoint.Meta {
		meta[k] = v
	}
	meta["house_year"] = c.cfg.HouseYear
	meta[metaLastCheckedID] = lastChecked
	meta["senate_download_url"] = downloadURL
	meta["house_rate_per_sec"] = c.bucket.Rate()

	next := domain.Checkpoint{
		ConnectorName: Name,
		LastCursor:    strconv.Itoa(lastChecked),
		LastSince:     checkpoint.LastSince,
		Meta:          meta,
	}
	return records, next, nil
}

// cursorFrom reads the house scan position: the meta sub-cursor first,
// then the plain cursor, then the configured start ID.
func (c *Connector) cursorFrom(checkpoint domain.Checkpoint) int {
	if v, ok := checkpoint.Meta[metaLastCheckedID]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
	}
	if n, err := strconv.Atoi(checkpoint.LastCursor); err == nil {
		return n
	}
	return c.cfg.StartID
}

// discoverSenateDownload scrapes the disclosure homepage for a bulk
// download link: an anchor whose text mentions downloading and whose
// href looks like an archive, else the first .zip link on the page.
func (c *Connector) discoverSenateDownload(ctx context.Context) (string, error) {
	resp, err := c.client.Get(ctx, c.cfg.SenateURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Text()))
	if err != nil {
		return "", err
	}

	found := ""
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if strings.Contains(text, "download") &&
			(strings.HasSuffix(href, ".zip") || strings.HasSuffix(href, ".xml") || strings.Contains(strings.ToLower(href), "download")) {
			found = c.absolute(href)
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.HasSuffix(href, ".zip") {
			found = c.absolute(href)
			return false
		}
		return true
	})
	return found, nil
}

func (c *Connector) absolute(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(c.cfg.SenateURL, "/") + "/" + strings.TrimLeft(href, "/")
}
