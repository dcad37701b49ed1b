package domain

import "errors"

var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or missing input data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyRecord indicates a raw record with neither bytes nor text content.
	ErrEmptyRecord = errors.New("raw record must include raw bytes or text")

	// ErrUnknownConnector indicates a connector name with no registered implementation.
	ErrUnknownConnector = errors.New("unknown connector")
)
