package domain

import "time"

// EventType classifies a canonical event.
type EventType string

const (
	// EventPoliticianDisclosure is a legislator financial-disclosure transaction.
	EventPoliticianDisclosure EventType = "POLITICIAN_DISCLOSURE"

	// EventFederalAward is a federal spending or defense contract award.
	EventFederalAward EventType = "FED_AWARD"

	// EventOtherPublicCatalyst is a public-record catalyst with no
	// dedicated type, such as a securities filing.
	EventOtherPublicCatalyst EventType = "OTHER_PUBLIC_CATALYST"
)

// Confidence is the tiered confidence of a canonical event.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Entity is a normalized participant extracted by a mapper.
type Entity struct {
	// Name is the entity's display name.
	Name string `json:"name"`

	// EntityType classifies the entity (PERSON, COMPANY, AGENCY).
	EntityType string `json:"entity_type"`

	// Role is the entity's role in the event (FILER, RECIPIENT, ...).
	Role string `json:"role"`
}

// EventDetails is the type-specific payload of a canonical event.
// Fixed fields the system reads live in TypeSpecific and Entities;
// RawPayload keeps the verbatim source payload for audit only.
type EventDetails struct {
	// TypeSpecific holds the mapper's extracted fields.
	TypeSpecific map[string]any `json:"type_specific"`

	// Entities lists the normalized participants.
	Entities []Entity `json:"entities"`

	// RawPayload is the original parsed payload, untouched.
	RawPayload any `json:"raw_payload"`
}

// CanonicalEvent is the normalization output consumed by downstream
// ranking. Never mutated after creation.
type CanonicalEvent struct {
	// RawDocumentID links back to the stored raw document, if known.
	RawDocumentID string `json:"raw_document_id,omitempty"`

	// EventType classifies the event.
	EventType EventType `json:"event_type"`

	// Title is the human-readable headline.
	Title string `json:"title"`

	// Summary is a short description of the event.
	Summary string `json:"summary"`

	// DiscoveredAt is when the system first saw the underlying document.
	DiscoveredAt time.Time `json:"discovered_at_utc"`

	// EventTimestamp is when the event itself happened or was published.
	EventTimestamp time.Time `json:"event_timestamp_utc"`

	// SourceType tags the origin system.
	SourceType string `json:"source_type"`

	// SourceName is the sub-source label.
	SourceName string `json:"source_name"`

	// SourceURL is the record's source location.
	SourceURL string `json:"source_url"`

	// ThemeTags labels the event for downstream filtering.
	ThemeTags []string `json:"theme_tags"`

	// Details is the type-specific payload.
	Details EventDetails `json:"details_json"`

	// Confidence is the tiered confidence of the event.
	Confidence Confidence `json:"confidence"`

	// CredibilityScore is 0-100.
	CredibilityScore int `json:"credibility_score"`

	// FreshnessScore is 0-100, banded by age since discovery.
	FreshnessScore int `json:"freshness_score"`

	// MaterialityScore is 0-100.
	MaterialityScore int `json:"materiality_score"`

	// OverallScore is the weighted rollup, clamped to 0-100.
	OverallScore int `json:"overall_score"`

	// SourceHash is the hex content identity of the underlying document.
	// Distinct from the connector-level document fingerprint.
	SourceHash string `json:"source_hash"`

	// EventFingerprint is the hex natural-key digest used for
	// cross-run event-level deduplication.
	EventFingerprint string `json:"event_fingerprint"`
}
