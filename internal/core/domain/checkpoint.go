package domain

import "time"

// Checkpoint is the durable per-connector resumption state.
// Exactly one checkpoint exists per connector name. It is read at the
// start of a run and replaced atomically at successful completion; a
// failed run leaves the prior checkpoint intact.
type Checkpoint struct {
	// ConnectorName keys the checkpoint.
	ConnectorName string

	// LastCursor is an opaque cursor (page number, numeric ID, ...).
	LastCursor string

	// LastSince is the UTC time watermark.
	LastSince *time.Time

	// ETag is conditional-fetch material from the last response, if any.
	ETag string

	// Meta carries connector-specific extras (e.g. a sub-cursor for a
	// secondary crawl dimension).
	Meta map[string]any

	// UpdatedAt is when the checkpoint was last persisted.
	UpdatedAt time.Time
}

// NewCheckpoint returns a fresh empty checkpoint for a connector.
func NewCheckpoint(connectorName string) Checkpoint {
	return Checkpoint{
		ConnectorName: connectorName,
		Meta:          make(map[string]any),
	}
}

// MetaString returns a string-valued meta entry, or "" when absent or
// not a string.
func (c *Checkpoint) MetaString(key string) string {
	if c.Meta == nil {
		return ""
	}
	if s, ok := c.Meta[key].(string); ok {
		return s
	}
	return ""
}
