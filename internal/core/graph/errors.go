// Package graph defines domain-specific errors
package graph

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Lookup errors
	ErrNodeNotFound = errors.New("node not found")
	ErrPortNotFound = errors.New("port not found")
	ErrEdgeNotFound = errors.New("edge not found")

	// Connect errors
	ErrDirectionMismatch = errors.New("source must be an output port and destination an input port")
	ErrSameNode          = errors.New("cannot connect a node to itself")
)
