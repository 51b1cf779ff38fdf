package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbay/patchbay/internal/core/snapshot"
)

func testDoc(name string, createdAt time.Time) *snapshot.Document {
	return &snapshot.Document{
		ID:   uuid.NewString(),
		Name: name,
		Nodes: []snapshot.NodeRecord{{
			ID:      0,
			Type:    "Number",
			Control: 42.0,
			Outputs: []snapshot.PortRecord{{ID: 0, Name: "Value", Value: 42.0}},
		}},
		CreatedAt: createdAt,
		Version:   snapshot.DocumentVersion,
	}
}

func TestStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := Default()
	defer func() { _ = store.Close() }()

	doc := testDoc("patch-1", time.Now().UTC())

	t.Run("put document", func(t *testing.T) {
		err := store.Put(ctx, doc)
		require.NoError(t, err)
	})

	t.Run("get document", func(t *testing.T) {
		loaded, err := store.Get(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, loaded.ID)
		assert.Equal(t, doc.Name, loaded.Name)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, "Number", loaded.Nodes[0].Type)
		assert.Equal(t, 42.0, loaded.Nodes[0].Control)
	})

	t.Run("get unknown document", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("delete document", func(t *testing.T) {
		err := store.Delete(ctx, doc.ID)
		require.NoError(t, err)

		_, err = store.Get(ctx, doc.ID)
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("delete unknown document", func(t *testing.T) {
		err := store.Delete(ctx, doc.ID)
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})
}

func TestStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := Default()

	doc := testDoc("before", time.Now().UTC())
	require.NoError(t, store.Put(ctx, doc))

	doc.Name = "after"
	require.NoError(t, store.Put(ctx, doc))

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Name)

	stats := store.GetStats()
	assert.Equal(t, int64(1), stats.Count)
	assert.Positive(t, stats.Bytes)
}

func TestStore_GetReturnsDetachedCopy(t *testing.T) {
	ctx := context.Background()
	store := Default()

	doc := testDoc("patch-1", time.Now().UTC())
	require.NoError(t, store.Put(ctx, doc))

	first, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	first.Name = "mutated"
	first.Nodes[0].Control = -1.0

	second, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "patch-1", second.Name)
	assert.Equal(t, 42.0, second.Nodes[0].Control)
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := Default()

	doc := testDoc("", time.Now().UTC())
	err := store.Put(ctx, doc)
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshotName)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	store := Default()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	docs := make([]*snapshot.Document, 4)
	for i := range docs {
		name := "patch-a"
		if i%2 == 1 {
			name = "patch-b"
		}
		docs[i] = testDoc(name, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Put(ctx, docs[i]))
	}

	t.Run("newest first", func(t *testing.T) {
		results, err := store.List(ctx, snapshot.Filter{})
		require.NoError(t, err)
		require.Len(t, results, 4)
		for i := range results {
			assert.Equal(t, docs[3-i].ID, results[i].ID)
		}
	})

	t.Run("filter by name", func(t *testing.T) {
		results, err := store.List(ctx, snapshot.Filter{Name: "patch-b"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, docs[3].ID, results[0].ID)
		assert.Equal(t, docs[1].ID, results[1].ID)
	})

	t.Run("time window", func(t *testing.T) {
		since := base.Add(time.Hour)
		before := base.Add(3 * time.Hour)
		results, err := store.List(ctx, snapshot.Filter{Since: &since, Before: &before})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, docs[2].ID, results[0].ID)
		assert.Equal(t, docs[1].ID, results[1].ID)
	})

	t.Run("offset and limit", func(t *testing.T) {
		results, err := store.List(ctx, snapshot.Filter{Offset: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, docs[2].ID, results[0].ID)
		assert.Equal(t, docs[1].ID, results[1].ID)
	})

	t.Run("offset past end", func(t *testing.T) {
		results, err := store.List(ctx, snapshot.Filter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := store.List(ctx, snapshot.Filter{Limit: -1})
		assert.ErrorIs(t, err, snapshot.ErrInvalidLimit)
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := Default()

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				doc := testDoc(fmt.Sprintf("patch-%d", i), time.Now().UTC())
				if err := store.Put(ctx, doc); err != nil {
					t.Errorf("put: %v", err)
					return
				}
				if _, err := store.Get(ctx, doc.ID); err != nil {
					t.Errorf("get: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(workers*20), store.GetStats().Count)
}
