// Package snapshot defines domain-specific errors
package snapshot

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Document validation errors
	ErrInvalidSnapshotID   = errors.New("invalid snapshot ID")
	ErrInvalidSnapshotName = errors.New("invalid snapshot name")
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrDanglingEdge        = errors.New("edge references a port missing from the document")

	// Filter validation errors
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("invalid time range: since is after before")
)
