package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Cache is the redis fast path for unread counters, recent message pages and
// conversation lists. It is strictly a hint: every failure is logged and
// reported as a miss, and writers invalidate rather than update derived
// entries. A nil client disables it entirely.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

const (
	unreadTTL   = 5 * time.Minute
	recentTTL   = 2 * time.Minute
	convListTTL = time.Minute
)

func unreadKey(convID, userID string) string {
	return fmt.Sprintf("chat:unread:%s:%s", convID, userID)
}

func recentKey(convID string) string {
	return fmt.Sprintf("chat:messages:%s", convID)
}

func convListKey(userID string) string {
	return fmt.Sprintf("chat:convos:%s", userID)
}

func (c *Cache) warn(op string, err error) {
	logger.Warn().Err(err).Str("op", op).Msg("chat cache degraded, treating as miss")
}

// UnreadGet returns the cached unread counter and whether it was present.
func (c *Cache) UnreadGet(ctx context.Context, convID, userID string) (int64, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	n, err := c.rdb.Get(ctx, unreadKey(convID, userID)).Int64()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		c.warn("unread get", err)
		return 0, false
	}
	return n, true
}

// UnreadSeed primes the counter after an authoritative recompute.
func (c *Cache) UnreadSeed(ctx context.Context, convID, userID string, n int64) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, unreadKey(convID, userID), n, unreadTTL).Err(); err != nil {
		c.warn("unread seed", err)
	}
}

// UnreadIncr bumps the counter atomically, but only when one is already
// cached. Incrementing an absent key would invent a counter of 1 under a
// cold cache, disagreeing with the durable count; absent keys stay absent
// until a reader seeds them.
func (c *Cache) UnreadIncr(ctx context.Context, convID, userID string) {
	if c == nil || c.rdb == nil {
		return
	}
	key := unreadKey(convID, userID)
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.warn("unread incr", err)
		return
	}
	if exists == 0 {
		return
	}
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		c.warn("unread incr", err)
	}
}

// UnreadClear is the atomic set-to-zero used by markRead.
func (c *Cache) UnreadClear(ctx context.Context, convID, userID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, unreadKey(convID, userID), 0, unreadTTL).Err(); err != nil {
		c.warn("unread clear", err)
	}
}

// UnreadInvalidate drops the counter so the next reader recomputes. Used
// when a deletion makes the cached value unrecoverable.
func (c *Cache) UnreadInvalidate(ctx context.Context, convID string, userIDs ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, u := range userIDs {
		keys = append(keys, unreadKey(convID, u))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.warn("unread invalidate", err)
	}
}

// RecentMessages returns the cached newest page for a conversation.
func (c *Cache) RecentMessages(ctx context.Context, convID string) ([]models.Message, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, recentKey(convID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.warn("recent get", err)
		return nil, false
	}
	var msgs []models.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		c.warn("recent decode", err)
		return nil, false
	}
	return msgs, true
}

func (c *Cache) SetRecentMessages(ctx context.Context, convID string, msgs []models.Message) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		c.warn("recent encode", err)
		return
	}
	if err := c.rdb.Set(ctx, recentKey(convID), raw, recentTTL).Err(); err != nil {
		c.warn("recent set", err)
	}
}

func (c *Cache) InvalidateMessages(ctx context.Context, convID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, recentKey(convID)).Err(); err != nil {
		c.warn("recent invalidate", err)
	}
}

// ConversationList returns the cached conversation list for a user.
func (c *Cache) ConversationList(ctx context.Context, userID string) ([]models.Conversation, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, convListKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.warn("convlist get", err)
		return nil, false
	}
	var convs []models.Conversation
	if err := json.Unmarshal(raw, &convs); err != nil {
		c.warn("convlist decode", err)
		return nil, false
	}
	return convs, true
}

func (c *Cache) SetConversationList(ctx context.Context, userID string, convs []models.Conversation) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(convs)
	if err != nil {
		c.warn("convlist encode", err)
		return
	}
	if err := c.rdb.Set(ctx, convListKey(userID), raw, convListTTL).Err(); err != nil {
		c.warn("convlist set", err)
	}
}

func (c *Cache) InvalidateConversationList(ctx context.Context, userIDs ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, u := range userIDs {
		keys = append(keys, convListKey(u))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.warn("convlist invalidate", err)
	}
}
