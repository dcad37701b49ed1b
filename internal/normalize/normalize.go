// Package normalize converts raw public-record documents into
// canonical events. Normalization is a pure function: every
// data-quality failure resolves to a quarantine or reject verdict
// with a reason, never an error, so one bad document can never
// interrupt its siblings.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// Placeholder values a mapper replaces with generated text.
const (
	titlePlaceholder   = "Untitled"
	summaryPlaceholder = "No summary available."
)

// Input is a raw-document-like record, as stored or as one JSONL row.
// Timestamp fields are typed loosely because rows arrive with ISO
// strings or epoch numbers depending on the producer.
type Input struct {
	RawDocumentID  string `json:"raw_document_id,omitempty"`
	SourceType     string `json:"source_type"`
	SourceName     string `json:"source_name"`
	SourceURL      string `json:"source_url"`
	Title          string `json:"title,omitempty"`
	Summary        string `json:"summary,omitempty"`
	TextContent    string `json:"text_content,omitempty"`
	Payload        any    `json:"payload_json,omitempty"`
	RetrievedAt    any    `json:"retrieved_at_utc,omitempty"`
	DiscoveredAt   any    `json:"discovered_at_utc,omitempty"`
	PublishedAt    any    `json:"published_at_utc,omitempty"`
	EventTimestamp any    `json:"event_timestamp_utc,omitempty"`
	ContentSHA256  string `json:"content_sha256,omitempty"`
}

// futureSlack is how far in the future an event timestamp may sit
// before the document is quarantined.
const futureSlack = 24 * time.Hour

// Normalize routes one raw document to its source-specific mapper and
// returns the canonical event or a quarantine/reject verdict.
func Normalize(in Input) domain.NormalizationResult {
	now := time.Now().UTC()

	discoveredAt := parseTime(in.RetrievedAt)
	if discoveredAt == nil {
		discoveredAt = parseTime(in.DiscoveredAt)
	}
	if discoveredAt == nil {
		discoveredAt = &now
	}

	eventTime := parseTime(in.PublishedAt)
	if eventTime == nil {
		eventTime = parseTime(in.EventTimestamp)
	}
	if eventTime == nil {
		eventTime = discoveredAt
	}

	// Baseline invariants. Reject is permanent; quarantine is
	// recoverable by enrichment or a source-side fix.
	if !isSecureURL(in.SourceURL) {
		return reject("source_url must be https")
	}

	title := normWS(in.Title)
	if title == "" {
		return reject("missing title")
	}

	summary := normWS(in.Summary)
	if summary == "" {
		summary = normWS(in.TextContent)
	}
	if summary == "" {
		return quarantine("missing summary; needs enrichment")
	}

	if eventTime.After(now.Add(futureSlack)) {
		return quarantine("event_timestamp_utc too far in future")
	}

	payload := in.Payload
	if payload == nil {
		payload = tryParseJSON(in.TextContent)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	sourceName := in.SourceName
	if sourceName == "" {
		sourceName = in.SourceType
	}
	if sourceName == "" {
		sourceName = "UNKNOWN"
	}
	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = "OTHER_PUBLIC"
	}

	base := domain.CanonicalEvent{
		RawDocumentID:  in.RawDocumentID,
		Title:          title,
		Summary:        summary,
		DiscoveredAt:   *discoveredAt,
		EventTimestamp: *eventTime,
		SourceType:     sourceType,
		SourceName:     sourceName,
		SourceURL:      in.SourceURL,
	}

	name := strings.ToLower(in.SourceName)
	typ := strings.ToLower(in.SourceType)

	switch {
	case strings.Contains(name, "politic") || strings.Contains(name, "senate") ||
		strings.Contains(name, "house") || strings.Contains(typ, "disclosure"):
		return mapPoliticianDisclosure(in, base, payload)
	case strings.Contains(name, "usaspending") || strings.Contains(typ, "usaspending"):
		return mapSpendingAward(in, base, payload)
	case strings.Contains(name, "dod") || strings.Contains(name, "defense") ||
		strings.Contains(typ, "dod"):
		return mapDefenseAward(in, base, payload)
	case strings.Contains(name, "sec") || strings.Contains(name, "edgar") ||
		strings.Contains(typ, "sec"):
		return mapSecuritiesFiling(in, base, payload)
	}

	return quarantine("unknown source routing; add mapper")
}

func ok(event *domain.CanonicalEvent, reason string) domain.NormalizationResult {
	return domain.NormalizationResult{Status: domain.NormalizationOK, Reason: reason, Event: event}
}

func quarantine(reason string) domain.NormalizationResult {
	return domain.NormalizationResult{Status: domain.NormalizationQuarantine, Reason: reason}
}

func reject(reason string) domain.NormalizationResult {
	return domain.NormalizationResult{Status: domain.NormalizationReject, Reason: reason}
}

// finalize fills the scores and identity hashes shared by all mappers.
func finalize(in Input, event *domain.CanonicalEvent, eventType domain.EventType, identity []string) *domain.CanonicalEvent {
	event.EventType = eventType

	scores := placeholderScores(event.DiscoveredAt)
	event.Confidence = scores.Confidence
	event.CredibilityScore = scores.Credibility
	event.FreshnessScore = scores.Freshness
	event.MaterialityScore = scores.Materiality
	event.OverallScore = scores.Overall

	seed := strings.Join([]string{
		string(eventType),
		event.SourceName,
		event.SourceURL,
		event.Title,
		event.EventTimestamp.UTC().Format(time.RFC3339),
	}, "|")
	event.SourceHash = sourceHash(in.ContentSHA256, seed)
	event.EventFingerprint = eventFingerprint(identity)

	return event
}

var whitespace = regexp.MustCompile(`\s+`)

// normWS collapses runs of whitespace and trims the ends.
func normWS(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func isSecureURL(url string) bool {
	return strings.HasPrefix(strings.ToLower(url), "https://")
}

// tryParseJSON parses text as JSON only when it is syntactically a
// JSON object or array. Anything else returns nil.
func tryParseJSON(text string) any {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}

// parseTime accepts a time.Time, an epoch number, or an ISO-8601
// string (with or without a trailing Z). Naive times are taken as UTC.
func parseTime(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		u := t.UTC()
		return &u
	case float64:
		u := time.Unix(int64(t), 0).UTC()
		return &u
	case int64:
		u := time.Unix(t, 0).UTC()
		return &u
	case int:
		u := time.Unix(int64(t), 0).UTC()
		return &u
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
		return nil
	}
	return nil
}
