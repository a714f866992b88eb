package chat_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

func newRedisCache(t *testing.T) *chat.Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return chat.NewCache(client)
}

func TestUnreadIncrOnlyBumpsSeededCounter(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()

	// An increment on a cold counter must not invent a value of 1 that
	// disagrees with the durable count.
	cache.UnreadIncr(ctx, "conv-1", "user-1")
	_, ok := cache.UnreadGet(ctx, "conv-1", "user-1")
	assert.False(t, ok, "absent counters stay absent until a reader seeds them")

	cache.UnreadSeed(ctx, "conv-1", "user-1", 3)
	cache.UnreadIncr(ctx, "conv-1", "user-1")

	n, ok := cache.UnreadGet(ctx, "conv-1", "user-1")
	require.True(t, ok)
	assert.EqualValues(t, 4, n)
}

func TestUnreadClearSetsZeroInPlace(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()

	cache.UnreadSeed(ctx, "conv-1", "user-1", 5)
	cache.UnreadClear(ctx, "conv-1", "user-1")

	// Clear is a set-to-zero, not a delete: the next read hits.
	n, ok := cache.UnreadGet(ctx, "conv-1", "user-1")
	require.True(t, ok)
	assert.Zero(t, n)

	// Subsequent sends increment the zeroed counter directly.
	cache.UnreadIncr(ctx, "conv-1", "user-1")
	n, ok = cache.UnreadGet(ctx, "conv-1", "user-1")
	require.True(t, ok)
	assert.EqualValues(t, 1, n)
}

func TestUnreadInvalidateForcesRecompute(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()

	cache.UnreadSeed(ctx, "conv-1", "user-a", 2)
	cache.UnreadSeed(ctx, "conv-1", "user-b", 4)
	cache.UnreadInvalidate(ctx, "conv-1", "user-a", "user-b")

	_, ok := cache.UnreadGet(ctx, "conv-1", "user-a")
	assert.False(t, ok)
	_, ok = cache.UnreadGet(ctx, "conv-1", "user-b")
	assert.False(t, ok)
}

func TestRecentMessagesHitAndInvalidate(t *testing.T) {
	cache := newRedisCache(t)
	ctx := context.Background()

	_, ok := cache.RecentMessages(ctx, "conv-1")
	assert.False(t, ok)

	content := "cached page"
	cache.SetRecentMessages(ctx, "conv-1", []models.Message{
		{ID: "m1", ConversationID: "conv-1", SenderID: "user-1", Content: &content},
	})

	msgs, ok := cache.RecentMessages(ctx, "conv-1")
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	require.NotNil(t, msgs[0].Content)
	assert.Equal(t, content, *msgs[0].Content)

	cache.InvalidateMessages(ctx, "conv-1")
	_, ok = cache.RecentMessages(ctx, "conv-1")
	assert.False(t, ok)
}

// End to end through the engine: a seeded counter is served from redis and
// a send bumps it without touching the durable recompute path.
func TestUnreadCountUsesSeededCache(t *testing.T) {
	e := newTestEngine(t)
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := chat.NewCache(client)
	e.directory = chat.NewDirectory(e.db, e.rel, cache)
	e.messages = chat.NewMessages(e.db, e.rel, e.users, cache)
	ctx := context.Background()

	alice, bob, conv := friendsWithConversation(t, e)
	e.send(t, conv.ID, alice.ID, "one")

	// First read misses and seeds the counter from the durable store.
	n, err := e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	e.send(t, conv.ID, alice.ID, "two")
	n, err = e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "the send increments the seeded counter")

	_, err = e.directory.MarkRead(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	n, err = e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
