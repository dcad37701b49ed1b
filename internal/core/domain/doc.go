// Package domain contains the core types for ingestion and normalization.
// It has no dependencies on adapters or external services.
package domain
