// Package dodcontracts ingests defense contract announcements from the
// Defense.gov contracts listing, preferring its RSS feed and falling
// back to scraping article links off the landing page.
package dodcontracts

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/httpx"
	"github.com/catalyst-labs/radar/internal/logger"
)

// Name is the connector's registry name.
const Name = "contract_announcements"

// Ensure Connector implements the port.
var _ driven.Connector = (*Connector)(nil)

// Connector discovers contract announcement articles, deduplicates by
// URL, and fetches the oldest unseen articles first so the watermark
// only ever moves forward.
type Connector struct {
	client       *httpx.Client
	contractsURL string
}

// New creates the contract-announcement connector.
func New(cfg httpx.Config, contractsURL string) *Connector {
	return &Connector{
		client:       httpx.NewClient(cfg),
		contractsURL: contractsURL,
	}
}

// Name returns the registry name.
func (c *Connector) Name() string {
	return Name
}

// item is one discovered article link with its publish date, if known.
type item struct {
	link string
	pub  *time.Time
}

// FetchBatch stores the landing page as an audit record, discovers the
// article list, skips items at or before the watermark, and fetches up
// to limit articles oldest-first.
func (c *Connector) FetchBatch(ctx context.Context, checkpoint domain.Checkpoint, limit int) ([]domain.RawRecord, domain.Checkpoint, error) {
	since := checkpoint.LastSince

	resp, err := c.client.Get(ctx, c.contractsURL)
	if err != nil {
		return nil, checkpoint, fmt.Errorf("fetch contracts landing: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Text()))
	if err != nil {
		return nil, checkpoint, fmt.Errorf("parse contracts landing: %w", err)
	}

	rssURL := c.discoverFeed(doc)

	var items []item
	if rssURL != "" {
		items, err = c.feedItems(ctx, rssURL)
		if err != nil {
			// Fall back to the landing page when the feed is broken.
			logger.Warn("dodcontracts: feed %s: %v", rssURL, err)
			items = c.scrapeItems(doc)
		}
	} else {
		items = c.scrapeItems(doc)
	}

	picked := pick(items, since, limit)

	records := []domain.RawRecord{{
		SourceType:   "dod",
		SourceName:   "defense_contracts_landing",
		URL:          c.contractsURL,
		RecordID:     "landing:" + resp.Header.Get("Date"),
		FetchedAt:    time.Now().UTC(),
		Title:        "Defense.gov Contracts landing",
		MIMEType:     "text/html",
		Text:         resp.Text(),
		HTTPStatus:   resp.StatusCode,
		Headers:      resp.HeaderMap(),
		CanonicalURL: c.contractsURL,
		Meta:         map[string]any{"kind": "landing", "rss": rssURL},
	}}

	newest := since
	for _, it := range picked {
		art, err := c.client.Get(ctx, it.link)
		if err != nil {
			return nil, checkpoint, fmt.Errorf("fetch article %s: %w", it.link, err)
		}

		title := ""
		if artDoc, perr := goquery.NewDocumentFromReader(strings.NewReader(art.Text())); perr == nil {
			title = strings.TrimSpace(artDoc.Find("h1").First().Text())
		}

		records = append(records, domain.RawRecord{
			SourceType:   "dod",
			SourceName:   "defense_contracts_article",
			URL:          it.link,
			RecordID:     it.link,
			FetchedAt:    time.Now().UTC(),
			PublishedAt:  it.pub,
			Title:        title,
			MIMEType:     "text/html",
			Text:         art.Text(),
			HTTPStatus:   art.StatusCode,
			Headers:      art.HeaderMap(),
			CanonicalURL: it.link,
			Meta:         map[string]any{"kind": "article"},
		})

		if it.pub != nil && (newest == nil || it.pub.After(*newest)) {
			newest = it.pub
		}
	}

	next := domain.Checkpoint{
		ConnectorName: Name,
		LastSince:     newest,
		Meta:          map[string]any{"rss": rssURL},
	}
	return records, next, nil
}

// discoverFeed finds an advertised RSS feed link on the landing page.
func (c *Connector) discoverFeed(doc *goquery.Document) string {
	href, ok := doc.Find(`link[type="application/rss+xml"]`).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	return c.absolute(href)
}

// feedItems reads article links and publish dates from the RSS feed.
func (c *Connector) feedItems(ctx context.Context, rssURL string) ([]item, error) {
	resp, err := c.client.Get(ctx, rssURL)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(resp.Text())
	if err != nil {
		return nil, err
	}

	var items []item
	for _, entry := range feed.Items {
		if entry.Link == "" {
			continue
		}
		var pub *time.Time
		if entry.PublishedParsed != nil {
			t := entry.PublishedParsed.UTC()
			pub = &t
		}
		items = append(items, item{link: entry.Link, pub: pub})
	}
	return items, nil
}

var dateText = regexp.MustCompile(`[A-Z][a-z]+\.?\s+\d{1,2},\s+\d{4}`)

// scrapeItems extracts article links from the landing page when no
// feed is advertised. The publish date is taken from the nearest date
// text around each anchor.
func (c *Connector) scrapeItems(doc *goquery.Document) []item {
	var items []item
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/News/Contracts/") || strings.Count(href, "/") < 3 {
			return
		}
		link := c.absolute(href)

		var pub *time.Time
		context := sel.Text()
		if parent := sel.Parent(); parent.Length() > 0 {
			context += " " + parent.Text()
		}
		if m := dateText.FindString(context); m != "" {
			pub = parseArticleDate(m)
		}

		items = append(items, item{link: link, pub: pub})
	})
	return items
}

// absolute resolves a possibly relative Defense.gov link.
func (c *Connector) absolute(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.defense.gov" + "/" + strings.TrimPrefix(href, "/")
}

// parseArticleDate handles the "Dec. 19, 2025" style dates Defense.gov
// uses, including its nonstandard "Sept." abbreviation.
func parseArticleDate(text string) *time.Time {
	text = strings.ReplaceAll(strings.TrimSpace(text), "Sept.", "Sep.")
	for _, layout := range []string{"Jan. 2, 2006", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, text); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// pick deduplicates by URL, sorts ascending by publish date, drops
// items at or before the watermark, and keeps the oldest limit items.
func pick(items []item, since *time.Time, limit int) []item {
	seen := make(map[string]bool, len(items))
	deduped := make([]item, 0, len(items))
	for _, it := range items {
		if seen[it.link] {
			continue
		}
		seen[it.link] = true
		deduped = append(deduped, it)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if deduped[i].pub != nil {
			ti = *deduped[i].pub
		}
		if deduped[j].pub != nil {
			tj = *deduped[j].pub
		}
		return ti.Before(tj)
	})

	if limit < 1 {
		limit = 1
	}

	var picked []item
	for _, it := range deduped {
		if since != nil && it.pub != nil && !it.pub.After(*since) {
			continue
		}
		picked = append(picked, it)
		if len(picked) >= limit {
			break
		}
	}
	return picked
}
