// Package usecases defines application-level errors
package usecases

import "errors"

// Wiring protocol errors
var (
	ErrNotDragging      = errors.New("no drag in progress")
	ErrDragInProgress   = errors.New("a drag is already in progress")
	ErrNoSuggestion     = errors.New("no pending type suggestion")
	ErrIncompatibleType = errors.New("chosen type has no port compatible with the drag origin")
)
