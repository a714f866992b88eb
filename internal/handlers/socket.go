package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/pkg/errors"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/logger"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

var SocketServer *socketio.Server

func userRoom(userID string) string {
	return "user:" + userID
}

func conversationRoom(convID string) string {
	return "conv:" + convID
}

// broadcastToConversation pushes an event to every live connection of both
// participants that joined the conversation group. Best-effort: state is
// already committed when this runs, and a stale connection never fails the
// mutation.
func broadcastToConversation(convID, event string, data interface{}) {
	if SocketServer == nil {
		return
	}
	SocketServer.BroadcastToRoom("/", conversationRoom(convID), event, data)
}

// broadcastToUser pushes an event to all of one user's devices.
func broadcastToUser(userID, event string, data interface{}) {
	if SocketServer == nil {
		return
	}
	SocketServer.BroadcastToRoom("/", userRoom(userID), event, data)
}

// BroadcastPresenceUpdate announces a presence flip to everyone watching the
// presence room.
func BroadcastPresenceUpdate(userID string, isOnline bool) {
	if SocketServer == nil {
		return
	}
	event := "user_online"
	if !isOnline {
		event = "user_offline"
	}
	SocketServer.BroadcastToRoom("/", "presence", event, map[string]interface{}{
		"userId": userID,
	})
}

// emitError surfaces a rejected operation to the offending connection
// without crashing it or leaking internals.
func emitError(s socketio.Conn, err error) {
	s.Emit("error_occurred", map[string]interface{}{
		"reason": chatErrorReason(err),
	})
}

func chatErrorReason(err error) string {
	switch {
	case errors.Is(err, chat.ErrNotFriends):
		return "not_friends"
	case errors.Is(err, chat.ErrBlocked):
		return "blocked"
	case errors.Is(err, chat.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, chat.ErrNotFound):
		return "not_found"
	case errors.Is(err, chat.ErrInvalidInput):
		return "invalid_request"
	default:
		return "internal_error"
	}
}

func connUserID(s socketio.Conn) string {
	userID, _ := s.Context().(string)
	return userID
}

func asString(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}

func InitSocketServer() *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		url := s.URL()

		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token")
		}
		if token == "" {
			logger.Warn().Str("socketId", s.ID()).Msg("socket rejected: no token")
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			logger.Warn().Str("socketId", s.ID()).Msg("socket rejected: invalid token")
			return fmt.Errorf("invalid token")
		}
		userID := claims.UserID
		s.SetContext(userID)

		wasOffline := presence.Connect(userID, s.ID())

		// Device set: notifications and conversation-list updates reach
		// every open client of this user.
		s.Join(userRoom(userID))
		s.Join("presence")

		// Join every conversation the user participates in so per-thread
		// events arrive without an explicit join from the client.
		ctx := context.Background()
		convs, err := chatDirectory.ListFor(ctx, userID)
		if err != nil {
			logger.Error().Err(err).Str("userId", userID).Msg("socket connect: conversation list failed")
		} else {
			for _, conv := range convs {
				s.Join(conversationRoom(conv.ID))
			}
		}

		if wasOffline {
			BroadcastPresenceUpdate(userID, true)
		}
		s.Emit("online_users", presence.OnlineUsers())

		logger.Info().Str("socketId", s.ID()).Str("userId", userID).Msg("socket connected")
		return nil
	})

	server.OnEvent("/", "heartbeat", func(s socketio.Conn, _ string) {
		if userID := connUserID(s); userID != "" {
			presence.Heartbeat(userID)
		}
	})

	server.OnEvent("/", "join_conversation", func(s socketio.Conn, convID string) {
		userID := connUserID(s)
		if userID == "" || convID == "" {
			return
		}
		conv, err := chatDirectory.Get(context.Background(), convID)
		if err != nil || !conv.HasParticipant(userID) {
			emitError(s, chat.ErrUnauthorized)
			return
		}
		s.Join(conversationRoom(convID))
	})

	server.OnEvent("/", "leave_conversation", func(s socketio.Conn, convID string) {
		if convID != "" {
			s.Leave(conversationRoom(convID))
		}
	})

	server.OnEvent("/", "send_message", func(s socketio.Conn, data map[string]interface{}) {
		userID := connUserID(s)
		if userID == "" {
			return
		}
		presence.Heartbeat(userID)

		// Socket sends bypass the HTTP rate-limit middleware, so throttle
		// per user here. Fails open when redis is down.
		if allowed, _ := database.CheckRateLimit("chat:"+userID, 30, time.Minute); !allowed {
			emitError(s, chat.ErrInvalidInput)
			return
		}

		in := chat.SendInput{
			ConversationID: asString(data, "conversationId"),
			SenderID:       userID,
		}
		if content := asString(data, "content"); content != "" {
			clean, err := SanitizeMessageContent(content)
			if err != nil {
				emitError(s, chat.ErrInvalidInput)
				return
			}
			in.Content = &clean
		}
		if replyTo := asString(data, "replyToId"); replyTo != "" {
			in.ReplyToID = &replyTo
		}
		if raw, ok := data["media"].(map[string]interface{}); ok {
			size, _ := raw["fileSizeBytes"].(float64)
			in.Media = &chat.MediaDescriptor{
				URL:       asString(raw, "url"),
				Kind:      chat.MediaKind(asString(raw, "kind")),
				MimeType:  asString(raw, "mimeType"),
				FileName:  asString(raw, "fileName"),
				SizeBytes: int64(size),
			}
			if err := ValidateMediaURL(in.Media.URL); err != nil {
				emitError(s, chat.ErrInvalidInput)
				return
			}
		}

		ctx := context.Background()
		msg, err := chatMessages.Send(ctx, in)
		if err != nil {
			emitError(s, err)
			return
		}

		// Typing implicitly stops once the message arrives.
		typingTracker.Set(in.ConversationID, userID, false)

		broadcastToConversation(in.ConversationID, "message_received", map[string]interface{}{
			"message": msg,
		})
		notifyConversationUpdated(ctx, in.ConversationID, userID)
	})

	server.OnEvent("/", "mark_read", func(s socketio.Conn, convID string) {
		userID := connUserID(s)
		if userID == "" || convID == "" {
			return
		}
		conv, err := chatDirectory.MarkRead(context.Background(), convID, userID)
		if err != nil {
			emitError(s, err)
			return
		}
		broadcastToConversation(convID, "message_read", map[string]interface{}{
			"conversationId": convID,
			"userId":         userID,
			"readAt":         conv.LastReadFor(userID),
		})
	})

	server.OnEvent("/", "set_typing", func(s socketio.Conn, data map[string]interface{}) {
		userID := connUserID(s)
		convID := asString(data, "conversationId")
		if userID == "" || convID == "" {
			return
		}
		isTyping, _ := data["isTyping"].(bool)

		conv, err := chatDirectory.Get(context.Background(), convID)
		if err != nil || !conv.HasParticipant(userID) {
			return
		}
		typingTracker.Set(convID, userID, isTyping)

		// The typist is excluded: in a 1:1 thread that means pushing to the
		// other participant's device set only.
		broadcastToUser(conv.OtherParticipant(userID), "typing_changed", map[string]interface{}{
			"conversationId": convID,
			"userId":         userID,
			"isTyping":       isTyping,
			"expiresAt":      time.Now().Add(chat.DefaultTypingTTL).Unix(),
		})
	})

	server.OnEvent("/", "react", func(s socketio.Conn, data map[string]interface{}) {
		userID := connUserID(s)
		messageID := asString(data, "messageId")
		kind := asString(data, "reactionType")
		if userID == "" || messageID == "" {
			return
		}
		ctx := context.Background()
		outcome, err := chatReactions.React(ctx, messageID, userID, kind)
		if err != nil {
			emitError(s, err)
			return
		}
		msg, err := chatMessages.Get(ctx, messageID)
		if err != nil {
			return
		}
		event := "reaction_added"
		if outcome == chat.ReactionRemoved {
			event = "reaction_removed"
		}
		broadcastToConversation(msg.ConversationID, event, map[string]interface{}{
			"messageId":    messageID,
			"userId":       userID,
			"reactionType": kind,
		})
	})

	server.OnEvent("/", "delete_message", func(s socketio.Conn, messageID string) {
		userID := connUserID(s)
		if userID == "" || messageID == "" {
			return
		}
		ctx := context.Background()
		msg, err := chatMessages.Get(ctx, messageID)
		if err != nil {
			emitError(s, err)
			return
		}
		ok, err := chatMessages.Delete(ctx, messageID, userID)
		if err != nil {
			emitError(s, err)
			return
		}
		if !ok {
			return
		}
		broadcastToConversation(msg.ConversationID, "message_deleted", map[string]interface{}{
			"messageId":      messageID,
			"conversationId": msg.ConversationID,
		})
		notifyConversationUpdated(ctx, msg.ConversationID, userID)
	})

	server.OnEvent("/", "query_online_status", func(s socketio.Conn, userIDs []string) {
		statuses := make(map[string]bool, len(userIDs))
		for _, id := range userIDs {
			statuses[id] = presence.IsOnline(id)
		}
		s.Emit("online_status", statuses)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		userID := connUserID(s)
		if userID == "" {
			return
		}
		// Offline is announced only when the last device drops; a
		// multi-device user closing one tab stays online.
		if nowOffline := presence.Disconnect(userID, s.ID()); nowOffline {
			BroadcastPresenceUpdate(userID, false)
		}
		logger.Info().Str("socketId", s.ID()).Str("userId", userID).Str("reason", reason).Msg("socket disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("socket error")
	})

	go func() {
		if err := server.Serve(); err != nil {
			logger.Error().Err(err).Msg("socket server stopped")
		}
	}()
	SocketServer = server
	return server
}

// notifyConversationUpdated refreshes the conversation-list view of the
// participant who did not perform the action, so inactive-view clients can
// re-render without having joined the conversation group.
func notifyConversationUpdated(ctx context.Context, convID, actorID string) {
	conv, err := chatDirectory.Get(ctx, convID)
	if err != nil {
		logger.Warn().Err(err).Str("conversationId", convID).Msg("conversation update fan-out skipped")
		return
	}
	otherID := conv.OtherParticipant(actorID)
	unread, err := chatDirectory.UnreadCount(ctx, convID, otherID)
	if err != nil {
		unread = 0
	}
	broadcastToUser(otherID, "conversation_updated", map[string]interface{}{
		"conversation": conv,
		"unreadCount":  unread,
	})
}

// SocketHandler wraps the socket.io server for gin.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
