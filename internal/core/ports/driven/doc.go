// Package driven defines the interfaces the core depends on:
// connectors and durable stores. Adapters implement these.
package driven
