package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbay/patchbay/internal/adapters/repository/redis"
	"github.com/patchbay/patchbay/internal/core/snapshot"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewFromClient(client, opts...), mr
}

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
	store, _ := newTestStore(t)

	doc := testDoc("patch-1", time.Now().UTC())

	require.NoError(t, store.Put(ctx, doc))

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, loaded.ID)
	assert.Equal(t, doc.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, 42.0, loaded.Nodes[0].Control)

	_, err = store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	require.NoError(t, store.Delete(ctx, doc.ID))
	_, err = store.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	assert.ErrorIs(t, store.Delete(ctx, doc.ID), snapshot.ErrSnapshotNotFound)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

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

	t.Run("invalid filter", func(t *testing.T) {
		_, err := store.List(ctx, snapshot.Filter{Limit: -1})
		assert.ErrorIs(t, err, snapshot.ErrInvalidLimit)
	})
}

func TestStore_TTLExpiryPrunesIndex(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))

	require.NoError(t, store.Put(ctx, testDoc("patch-1", time.Now().UTC())))
	require.NoError(t, store.Put(ctx, testDoc("patch-2", time.Now().UTC())))

	results, err := store.List(ctx, snapshot.Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	mr.FastForward(2 * time.Minute)

	results, err = store.List(ctx, snapshot.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	// The list pass prunes expired entries out of the index.
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()
	count, err := client.ZCard(ctx, "patchbay:snapshot:index").Result()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_CustomPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, redis.WithPrefix("custom:"))

	doc := testDoc("patch-1", time.Now().UTC())
	require.NoError(t, store.Put(ctx, doc))

	assert.True(t, mr.Exists("custom:"+doc.ID))

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, loaded.ID)
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	assert.ErrorIs(t, store.Put(ctx, nil), snapshot.ErrInvalidSnapshotID)

	doc := testDoc("", time.Now().UTC())
	assert.ErrorIs(t, store.Put(ctx, doc), snapshot.ErrInvalidSnapshotName)

	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshotID)

	assert.ErrorIs(t, store.Delete(ctx, ""), snapshot.ErrInvalidSnapshotID)
}
