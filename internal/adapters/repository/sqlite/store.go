// Package sqlite provides a SQLite-backed snapshot store
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/pkg/serialization"
)

// Store implements snapshot.Store on a SQLite database. The full document
// is kept as a serialized blob; name and created_at are duplicated into
// columns so List can filter and order without touching the blob.
type Store struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// New creates a SQLite snapshot store. A nil serializer selects the
// default msgpack+zstd pipeline.
func New(db *sql.DB, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.New()
	}
	return &Store{
		db:         db,
		serializer: serializer,
		tableName:  "snapshots",
	}
}

// WithTableName allows overriding the default table name with validation.
// Only alphanumeric and underscore are permitted to prevent SQL injection via identifiers.
func (s *Store) WithTableName(name string) *Store {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// CreateTables creates the snapshot table and indexes
func (s *Store) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			doc BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			version TEXT NOT NULL DEFAULT '1'
		);

		CREATE INDEX IF NOT EXISTS idx_%s_name ON %s (name);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
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

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, name, doc, created_at, version)
		VALUES (?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		doc.ID, doc.Name, data, doc.CreatedAt.UnixNano(), doc.Version)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Get retrieves a document by ID
func (s *Store) Get(ctx context.Context, id string) (*snapshot.Document, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", s.tableName)

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var doc snapshot.Document
	if err := s.serializer.Deserialize(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}

	return &doc, nil
}

// List returns documents matching the filter, newest first
func (s *Store) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter validation failed: %w", err)
	}

	query, args := s.buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var docs []*snapshot.Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var doc snapshot.Document
		if err := s.serializer.Deserialize(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return docs, nil
}

// Delete removes a document by ID
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return snapshot.ErrSnapshotNotFound
	}

	return nil
}

// buildListQuery constructs the SQL query for listing snapshots
func (s *Store) buildListQuery(filter snapshot.Filter) (string, []any) {
	query := fmt.Sprintf("SELECT doc FROM %s WHERE 1=1", s.tableName)
	args := make([]any, 0)

	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}

	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UnixNano())
	}

	if filter.Before != nil {
		query += " AND created_at < ?"
		args = append(args, filter.Before.UnixNano())
	}

	query += " ORDER BY created_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
		query += " LIMIT -1"
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
