// Package catalog defines domain-specific errors
package catalog

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrTypeNotFound = errors.New("node type not found")
)
