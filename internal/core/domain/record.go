package domain

import "time"

// RawRecord is one document fetched by a connector, before storage
// and normalization. Immutable after creation.
type RawRecord struct {
	// SourceType tags the origin system (e.g. "sec", "usaspending", "dod", "congress").
	SourceType string

	// SourceName is the sub-source label (e.g. "edgar_current_filing").
	SourceName string

	// URL is the location the record was fetched from.
	URL string

	// RecordID is the source-native identifier, if the source provides one.
	RecordID string

	// FetchedAt is the UTC retrieval instant.
	FetchedAt time.Time

	// PublishedAt is the UTC publication instant, if known.
	PublishedAt *time.Time

	// Title is the human-readable title, if known.
	Title string

	// MIMEType is the content type (e.g. "application/pdf").
	MIMEType string

	// RawBytes is the binary content. At least one of RawBytes and Text
	// must be set.
	RawBytes []byte

	// Text is the textual content.
	Text string

	// HTTPStatus is the response status of the fetch.
	HTTPStatus int

	// Headers holds the response headers of the fetch.
	Headers map[string]string

	// CanonicalURL is the stable URL for the record, when it differs
	// from the fetch URL.
	CanonicalURL string

	// Meta carries connector-specific extras, persisted verbatim for audit.
	Meta map[string]any
}

// HasContent reports whether the record carries any body at all.
func (r *RawRecord) HasContent() bool {
	return len(r.RawBytes) > 0 || r.Text != ""
}

// ContentBytes returns the binary content, falling back to the UTF-8
// encoding of Text when no raw bytes were captured.
func (r *RawRecord) ContentBytes() []byte {
	if r.RawBytes != nil {
		return r.RawBytes
	}
	return []byte(r.Text)
}
