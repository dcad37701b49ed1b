// Package driving defines the interfaces through which the outside
// world (CLI, scheduler) drives the core services.
package driving
