package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentDigest_Stable(t *testing.T) {
	rec := &RawRecord{Text: "hello"}
	first := ContentDigest(rec)
	second := ContentDigest(rec)

	assert.Len(t, first, 64)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, ContentDigest(&RawRecord{Text: "other"}))
}

func TestDocumentFingerprint_PrefersRecordID(t *testing.T) {
	withID := &RawRecord{
		SourceType:   "sec",
		SourceName:   "edgar_current_filing",
		RecordID:     "accession-1",
		CanonicalURL: "https://example.com/a",
		URL:          "https://example.com/a?utm=x",
	}
	sameIDOtherURL := &RawRecord{
		SourceType:   "sec",
		SourceName:   "edgar_current_filing",
		RecordID:     "accession-1",
		CanonicalURL: "https://example.com/b",
		URL:          "https://example.com/b",
	}

	// Same record ID collapses to one identity regardless of URL.
	assert.Equal(t,
		DocumentFingerprint(withID, ContentDigest(withID)),
		DocumentFingerprint(sameIDOtherURL, ContentDigest(sameIDOtherURL)))
}

func TestDocumentFingerprint_FallsBackToCanonicalURL(t *testing.T) {
	a := &RawRecord{SourceType: "dod", SourceName: "article", CanonicalURL: "https://example.com/x", Text: "one"}
	b := &RawRecord{SourceType: "dod", SourceName: "article", CanonicalURL: "https://example.com/x", Text: "two"}

	// Canonical URL identity ignores content changes.
	assert.Equal(t,
		DocumentFingerprint(a, ContentDigest(a)),
		DocumentFingerprint(b, ContentDigest(b)))
}

func TestDocumentFingerprint_FallsBackToURLAndDigest(t *testing.T) {
	a := &RawRecord{SourceType: "dod", SourceName: "article", URL: "https://example.com/x", Text: "one"}
	b := &RawRecord{SourceType: "dod", SourceName: "article", URL: "https://example.com/x", Text: "two"}

	// Without any stable ID the content digest participates, so
	// different bodies are different documents.
	assert.NotEqual(t,
		DocumentFingerprint(a, ContentDigest(a)),
		DocumentFingerprint(b, ContentDigest(b)))
}

func TestDocumentFingerprint_SourceScoped(t *testing.T) {
	a := &RawRecord{SourceType: "sec", SourceName: "feed", RecordID: "1"}
	b := &RawRecord{SourceType: "congress", SourceName: "feed", RecordID: "1"}

	assert.NotEqual(t,
		DocumentFingerprint(a, ContentDigest(a)),
		DocumentFingerprint(b, ContentDigest(b)))
}
