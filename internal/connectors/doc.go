// Package connectors wires the closed set of source connectors into a
// static registry keyed by connector name.
//
// Each connector lives in its own subpackage and implements the
// driven.Connector port: it fetches new raw records since a checkpoint
// and computes the checkpoint a successful run should commit, without
// ever writing to storage itself.
package connectors
