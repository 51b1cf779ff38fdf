// Package redis provides a Redis-backed snapshot store
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/pkg/serialization"
)

// Store implements snapshot.Store on Redis. Each document lives under a
// prefixed key as a serialized blob; a ZSET index scored by creation time
// serves List without scanning the keyspace.
type Store struct {
	client     *backend.Client
	serializer *serialization.Serializer
	prefix     string
	ttl        time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored documents.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithSerializer overrides the default msgpack+zstd pipeline.
func WithSerializer(serializer *serialization.Serializer) Option {
	return func(s *Store) {
		s.serializer = serializer
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:     client,
		serializer: serialization.New(),
		prefix:     "patchbay:snapshot:",
		ttl:        0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// score maps a creation time onto a ZSET score. Milliseconds keep the
// value exact in a float64; ties are resolved after decoding.
func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Put stores a document, replacing any document with the same ID
func (s *Store) Put(ctx context.Context, doc *snapshot.Document) error {
	if doc == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}

	data, err := s.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(doc.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score(doc.CreatedAt),
		Member: doc.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Get retrieves a document by ID
func (s *Store) Get(ctx context.Context, id string) (*snapshot.Document, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc snapshot.Document
	if err := s.serializer.Deserialize([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}

	return &doc, nil
}

// List returns documents matching the filter, newest first. The ZSET
// index narrows the candidate window; name and exact time bounds are
// applied on the decoded documents.
func (s *Store) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter validation failed: %w", err)
	}

	rng := &backend.ZRangeBy{Min: "-inf", Max: "+inf"}
	if filter.Since != nil {
		rng.Min = strconv.FormatInt(filter.Since.UnixMilli(), 10)
	}
	if filter.Before != nil {
		rng.Max = strconv.FormatInt(filter.Before.UnixMilli(), 10)
	}

	ids, err := s.client.ZRevRangeByScore(ctx, s.indexKey(), rng).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var docs []*snapshot.Document
	var stale []any
	for _, id := range ids {
		doc, err := s.Get(ctx, id)
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			// Expired keys leave index entries behind; prune lazily.
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Name != "" && doc.Name != filter.Name {
			continue
		}
		if filter.Since != nil && doc.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Before != nil && !doc.CreatedAt.Before(*filter.Before) {
			continue
		}
		docs = append(docs, doc)
	}
	if len(stale) > 0 {
		s.client.ZRem(ctx, s.indexKey(), stale...)
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(docs) {
			return nil, nil
		}
		docs = docs[filter.Offset:]
	}
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}

	return docs, nil
}

// Delete removes a document by ID
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to update snapshot index: %w", err)
	}
	if removed == 0 {
		return snapshot.ErrSnapshotNotFound
	}

	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
