package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/services"
	apperrors "github.com/LucHocIT/Social-media-app-sub000/pkg/errors"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/logger"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

// respondChatError maps engine failures onto AppErrors and hands them to the
// error middleware; nothing internal leaks to the client.
func respondChatError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, chat.ErrNotFriends):
		appErr = apperrors.Forbidden("Users must follow each other to chat")
	case errors.Is(err, chat.ErrBlocked):
		appErr = apperrors.Forbidden("Messaging is not available between these users")
	case errors.Is(err, chat.ErrUnauthorized):
		appErr = apperrors.Forbidden("Not a participant of this conversation")
	case errors.Is(err, chat.ErrNotFound):
		appErr = apperrors.NotFound("Not found")
	case errors.Is(err, chat.ErrInvalidInput):
		appErr = apperrors.BadRequest("Invalid request")
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("chat operation failed")
		appErr = apperrors.ErrInternalServer
	}
	_ = c.Error(appErr)
	c.Abort()
}

// conversationView is a list entry enriched with the partner's display info
// and the requester's unread state.
type conversationView struct {
	ID                 string         `json:"id"`
	Partner            chat.UserInfo  `json:"partner"`
	PartnerOnline      bool           `json:"partnerOnline"`
	LastMessageAt      *time.Time     `json:"lastMessageAt"`
	LastMessageSummary string         `json:"lastMessageSummary"`
	LastMessageSender  *string        `json:"lastMessageSenderId"`
	UnreadCount        int64          `json:"unreadCount"`
	MessageCount       int64          `json:"messageCount"`
}

// GetConversations returns the requester's visible conversations, newest
// activity first.
func GetConversations(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	ctx := c.Request.Context()

	convs, err := chatDirectory.ListFor(ctx, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	views := make([]conversationView, 0, len(convs))
	for _, conv := range convs {
		partnerID := conv.OtherParticipant(userID)
		view := conversationView{
			ID:                 conv.ID,
			PartnerOnline:      isOnline(partnerID),
			LastMessageAt:      conv.LastMessageAt,
			LastMessageSummary: conv.LastMessageSummary,
			LastMessageSender:  conv.LastMessageSenderID,
			MessageCount:       conv.MessageCount,
		}
		if info, err := userDirectory.DisplayInfo(ctx, partnerID); err == nil {
			view.Partner = info
		}
		if unread, err := chatDirectory.UnreadCount(ctx, conv.ID, userID); err == nil {
			view.UnreadCount = unread
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": views})
}

// OpenConversation finds or creates the thread with another user.
func OpenConversation(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !utils.IsUUID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	conv, err := chatDirectory.GetOrCreate(c.Request.Context(), userID, req.UserID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// GetMessages pages backward through a conversation. `before` is an
// RFC3339Nano exclusive cursor; messages come back oldest-first per page.
func GetMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	convID := c.Param("id")

	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
			return
		}
		before = &t
	}

	page, err := chatMessages.List(c.Request.Context(), convID, userID, pageSize, before)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SendMessage persists a message and fans it out to live connections.
func SendMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	convID := c.Param("id")

	var req struct {
		Content   *string               `json:"content"`
		Media     *chat.MediaDescriptor `json:"media"`
		ReplyToID *string               `json:"replyToId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Content != nil {
		clean, err := SanitizeMessageContent(*req.Content)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Content = &clean
	}
	if req.Media != nil {
		if err := ValidateMediaURL(req.Media.URL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	msg, err := chatMessages.Send(ctx, chat.SendInput{
		ConversationID: convID,
		SenderID:       userID,
		Content:        req.Content,
		Media:          req.Media,
		ReplyToID:      req.ReplyToID,
	})
	if err != nil {
		respondChatError(c, err)
		return
	}

	broadcastToConversation(convID, "message_received", map[string]interface{}{
		"message": msg,
	})
	notifyConversationUpdated(ctx, convID, userID)

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// MarkConversationRead stamps the requester's read marker.
func MarkConversationRead(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	convID := c.Param("id")

	conv, err := chatDirectory.MarkRead(c.Request.Context(), convID, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	broadcastToConversation(convID, "message_read", map[string]interface{}{
		"conversationId": convID,
		"userId":         userID,
		"readAt":         conv.LastReadFor(userID),
	})
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// HideConversation removes the thread from the requester's list without
// touching the other participant's view. `?purge=true` hard-deletes the
// conversation with its messages and reactions.
func HideConversation(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	convID := c.Param("id")
	ctx := c.Request.Context()

	var err error
	if c.Query("purge") == "true" {
		err = chatDirectory.Purge(ctx, convID, userID)
	} else {
		err = chatDirectory.Hide(ctx, convID, userID)
	}
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": true})
}

// DeleteMessage soft-deletes the requester's own message.
func DeleteMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	messageID := c.Param("id")
	ctx := c.Request.Context()

	msg, err := chatMessages.Get(ctx, messageID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	ok, err := chatMessages.Delete(ctx, messageID, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	broadcastToConversation(msg.ConversationID, "message_deleted", map[string]interface{}{
		"messageId":      messageID,
		"conversationId": msg.ConversationID,
	})
	notifyConversationUpdated(ctx, msg.ConversationID, userID)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ReactToMessage toggles the requester's reaction on a message.
func ReactToMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	messageID := c.Param("id")

	var req struct {
		ReactionType string `json:"reactionType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	outcome, err := chatReactions.React(ctx, messageID, userID, req.ReactionType)
	if err != nil {
		respondChatError(c, err)
		return
	}

	event := "reaction_added"
	applied := outcome == chat.ReactionApplied
	if !applied {
		event = "reaction_removed"
	}
	if msg, err := chatMessages.Get(ctx, messageID); err == nil {
		broadcastToConversation(msg.ConversationID, event, map[string]interface{}{
			"messageId":    messageID,
			"userId":       userID,
			"reactionType": req.ReactionType,
		})
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// GetMessageReactions returns the reaction summary for one message.
func GetMessageReactions(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	messageID := c.Param("id")

	summary, err := chatReactions.Summary(c.Request.Context(), messageID, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTypingUsers reports who is typing in a conversation right now.
func GetTypingUsers(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	convID := c.Param("id")

	conv, err := chatDirectory.Get(c.Request.Context(), convID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	if !conv.HasParticipant(userID) {
		respondChatError(c, chat.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": typingTracker.Users(convID)})
}

// GetOnlineStatus resolves presence for a comma-separated list of user ids.
func GetOnlineStatus(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("userIds"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userIds required"})
		return
	}
	ids := strings.Split(raw, ",")
	statuses := make(map[string]bool, len(ids))
	for _, id := range ids {
		statuses[id] = isOnline(id)
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// isOnline treats a user as online with a live connection, or failing that
// when their last authenticated activity falls inside the freshness window.
// The fallback covers clients that talk HTTP without holding a socket.
func isOnline(userID string) bool {
	if presence.IsOnline(userID) {
		return true
	}
	info, err := userDirectory.DisplayInfo(context.Background(), userID)
	if err != nil || info.LastActiveAt == nil {
		return false
	}
	return time.Since(*info.LastActiveAt) < services.OnlineFreshness
}
