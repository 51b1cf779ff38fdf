// Package snapshot provides snapshot persistence interfaces
package snapshot

import (
	"context"
	"time"
)

// Store interface for snapshot persistence (DIP - Dependency Inversion)
// PRINCIPLES:
// - ISP: Interface segregation with <=5 methods
// - DIP: Core domain depends on interface, not implementations
// - SRP: Single responsibility - snapshot persistence
type Store interface {
	// Put persists a document, replacing any document with the same ID
	Put(ctx context.Context, doc *Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*Document, error)

	// List returns documents matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]*Document, error)

	// Delete removes a document by ID
	Delete(ctx context.Context, id string) error
}

// Filter for snapshot queries (ISP - segregated interface)
type Filter struct {
	Name   string     `json:"name,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Before *time.Time `json:"before,omitempty"`
}

// Validate ensures filter parameters are valid
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}
