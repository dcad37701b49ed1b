package domain

// NormalizationStatus is the tagged outcome of normalizing one raw document.
type NormalizationStatus string

const (
	// NormalizationOK means a canonical event was produced.
	NormalizationOK NormalizationStatus = "ok"

	// NormalizationQuarantine means the document is retry-worthy after
	// enrichment or a source-side fix.
	NormalizationQuarantine NormalizationStatus = "quarantine"

	// NormalizationReject means the document is permanently unusable as-is.
	NormalizationReject NormalizationStatus = "reject"
)

// NormalizationResult carries the outcome, a human-readable reason, and
// the event for OK outcomes. Data-quality failures resolve to quarantine
// or reject values; they are never errors.
type NormalizationResult struct {
	Status NormalizationStatus
	Reason string
	Event  *CanonicalEvent
}

// Quarantined reports whether the result is a quarantine verdict.
func (r NormalizationResult) Quarantined() bool {
	return r.Status == NormalizationQuarantine
}

// Rejected reports whether the result is a reject verdict.
func (r NormalizationResult) Rejected() bool {
	return r.Status == NormalizationReject
}
