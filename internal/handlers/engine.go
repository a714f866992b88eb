package handlers

import (
	"context"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Shared chat engine instances, wired once at startup. Handlers and the
// socket layer share the same state the way database.DB is shared.
var (
	chatCache     *chat.Cache
	chatDirectory *chat.Directory
	chatMessages  *chat.Messages
	chatReactions *chat.Reactions
	presence      *chat.Presence
	typingTracker *chat.Typing
	userDirectory *services.Users
	relationships *services.Relationships
)

// InitChatEngine wires the conversation/presence engine. rdb may be nil;
// the cache then reports misses and everything falls back to the durable
// store.
func InitChatEngine(ctx context.Context, db *gorm.DB, rdb *redis.Client) {
	chatCache = chat.NewCache(rdb)
	relationships = services.NewRelationships(db)
	userDirectory = services.NewUsers(db)
	chatDirectory = chat.NewDirectory(db, relationships, chatCache)
	chatMessages = chat.NewMessages(db, relationships, userDirectory, chatCache)
	chatReactions = chat.NewReactions(db)
	presence = chat.NewPresence(chat.DefaultPresenceTTL)
	typingTracker = chat.NewTyping(chat.DefaultTypingTTL)

	presence.StartSweeper(ctx, chat.DefaultPresenceTTL/3, func(userID string) {
		BroadcastPresenceUpdate(userID, false)
	})
	typingTracker.StartSweeper(ctx, chat.DefaultTypingTTL)
}
