package store

import "errors"

var (
	// ErrNotFound is returned when no word matches the requested id.
	ErrNotFound = errors.New("word not found")

	// ErrNoFields is returned when an update names no fields to change.
	ErrNoFields = errors.New("no fields to update")

	// ErrInvalidRecord is returned when a stored row is missing required
	// fields or holds an out-of-range value.
	ErrInvalidRecord = errors.New("invalid stored record")
)
