package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisStore creates a store backed by a miniredis instance.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestRedisStoreAppendHistory(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "po", "planning: build chat"))
	require.NoError(t, store.Append(ctx, "po", "planned 2 task(s)"))
	require.NoError(t, store.Append(ctx, "ac", "ac_feedback: slice work"))

	items, err := store.History(ctx, "po", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"planning: build chat", "planned 2 task(s)"}, items)

	items, err = store.History(ctx, "ac", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"ac_feedback: slice work"}, items)
}

func TestRedisStoreHistoryLimit(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "po", fmt.Sprintf("item-%d", i)))
	}

	items, err := store.History(ctx, "po", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"item-3", "item-4"}, items)
}

func TestRedisStoreEmptyHistory(t *testing.T) {
	store := setupRedisStore(t)

	items, err := store.History(context.Background(), "nobody", 20)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestInMemoryStore(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "po", fmt.Sprintf("item-%d", i)))
	}

	items, err := store.History(ctx, "po", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"item-2", "item-3", "item-4"}, items)

	items, err = store.History(ctx, "nobody", 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewStoreFallsBack(t *testing.T) {
	ctx := context.Background()

	// No URL configured.
	store := NewStore(ctx, "", nil)
	_, ok := store.(*InMemoryStore)
	assert.True(t, ok)

	// Unreachable Redis.
	store = NewStore(ctx, "redis://127.0.0.1:1", nil)
	_, ok = store.(*InMemoryStore)
	assert.True(t, ok)
}

func TestNewStorePicksRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	store := NewStore(context.Background(), "redis://"+mr.Addr(), nil)
	_, ok := store.(*RedisStore)
	assert.True(t, ok)
}

func TestNilKnowledgeGraphIsNoop(t *testing.T) {
	var g *KnowledgeGraph
	ctx := context.Background()

	assert.NoError(t, g.UpsertNote(ctx, "po", "note"))
	notes, err := g.Notes(ctx, "po", 10)
	assert.NoError(t, err)
	assert.Nil(t, notes)
	assert.NoError(t, g.Close(ctx))

	// Unconfigured settings return a nil handle without error.
	g2, err := NewKnowledgeGraph("", "", "")
	assert.NoError(t, err)
	assert.Nil(t, g2)
	assert.NoError(t, g2.UpsertNote(ctx, "po", "note"))
}
