// Package memory provides a thread-safe in-memory snapshot store
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/pkg/serialization"
)

// Store implements snapshot.Store with in-memory storage
// PRINCIPLES:
// - KISS: Simple map guarded by an RWMutex
// - SRP: Single responsibility for in-memory snapshot storage
// - DIP: Implements snapshot.Store interface
type Store struct {
	mu         sync.RWMutex
	docs       map[string]entry
	serializer *serialization.Serializer
}

// entry keeps the serialized document plus the metadata List filters on.
// Documents are stored serialized so Get and List hand out detached
// copies; callers can mutate results without corrupting the store.
type entry struct {
	data      []byte
	name      string
	createdAt time.Time
}

// Config holds configuration for the in-memory store
type Config struct {
	Serializer *serialization.Serializer // Custom serializer (optional)
}

// New creates an in-memory snapshot store
func New(config Config) *Store {
	if config.Serializer == nil {
		config.Serializer = serialization.New()
	}
	return &Store{
		docs:       make(map[string]entry),
		serializer: config.Serializer,
	}
}

// Default creates a Store with default configuration
func Default() *Store {
	return New(Config{})
}

// Put stores a document, replacing any document with the same ID
func (s *Store) Put(_ context.Context, doc *snapshot.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}

	data, err := s.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("snapshot serialization failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = entry{
		data:      data,
		name:      doc.Name,
		createdAt: doc.CreatedAt,
	}
	return nil
}

// Get retrieves a document by ID
func (s *Store) Get(_ context.Context, id string) (*snapshot.Document, error) {
	s.mu.RLock()
	e, exists := s.docs[id]
	s.mu.RUnlock()
	if !exists {
		return nil, snapshot.ErrSnapshotNotFound
	}

	var doc snapshot.Document
	if err := s.serializer.Deserialize(e.data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot deserialization failed: %w", err)
	}
	return &doc, nil
}

// List returns documents matching the filter, newest first
func (s *Store) List(_ context.Context, filter snapshot.Filter) ([]*snapshot.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter validation failed: %w", err)
	}

	type candidate struct {
		id        string
		createdAt time.Time
	}

	s.mu.RLock()
	var matched []candidate
	for id, e := range s.docs {
		if filter.Name != "" && e.name != filter.Name {
			continue
		}
		if filter.Since != nil && e.createdAt.Before(*filter.Since) {
			continue
		}
		if filter.Before != nil && !e.createdAt.Before(*filter.Before) {
			continue
		}
		matched = append(matched, candidate{id: id, createdAt: e.createdAt})
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].createdAt.After(matched[j].createdAt)
		}
		return matched[i].id < matched[j].id
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	results := make([]*snapshot.Document, 0, len(matched))
	for _, c := range matched {
		doc, err := s.Get(context.Background(), c.id)
		if err != nil {
			// Deleted between the scan and the read; skip it.
			continue
		}
		results = append(results, doc)
	}
	return results, nil
}

// Delete removes a document by ID
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; !exists {
		return snapshot.ErrSnapshotNotFound
	}
	delete(s.docs, id)
	return nil
}

// Stats reports store occupancy
type Stats struct {
	Count int64 `json:"count"`
	Bytes int64 `json:"bytes"`
}

// GetStats returns occupancy statistics
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Count: int64(len(s.docs))}
	for _, e := range s.docs {
		stats.Bytes += int64(len(e.data))
	}
	return stats
}

// Close releases resources; the in-memory store holds none
func (s *Store) Close() error {
	return nil
}
