package chat

import (
	"context"
	"time"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserDirectory is the external user collaborator; the engine only needs
// display fields for resolving senders.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	DisplayInfo(ctx context.Context, userID string) (UserInfo, error)
}

type UserInfo struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"displayName"`
	AvatarURL    string     `json:"avatarUrl"`
	LastActiveAt *time.Time `json:"lastActiveAt"`
}

// Messages is the append-only message store. Every mutation composes its
// participant check, persistence and conversation bookkeeping into a single
// transaction; cache work happens after commit.
type Messages struct {
	db    *gorm.DB
	rel   RelationshipChecker
	users UserDirectory
	cache *Cache
}

func NewMessages(db *gorm.DB, rel RelationshipChecker, users UserDirectory, cache *Cache) *Messages {
	return &Messages{db: db, rel: rel, users: users, cache: cache}
}

type SendInput struct {
	ConversationID string
	SenderID       string
	Content        *string
	Media          *MediaDescriptor
	ReplyToID      *string
}

// DefaultPageSize is the message page size used when the caller does not ask
// for one.
const DefaultPageSize = 30

// MaxPageSize bounds client-supplied page sizes.
const MaxPageSize = 100

// Page is one backward-pagination step. Messages are oldest-first within the
// page; HasMore is the full-page heuristic, not an exact remainder count.
type Page struct {
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
}

// Send persists a message and updates the conversation's summary, counters
// and activation flags atomically. Blocks are re-checked here: a block
// established after the conversation was created still denies the send.
func (m *Messages) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	hasText := in.Content != nil && *in.Content != ""
	if !hasText && in.Media == nil {
		return nil, errors.Wrap(ErrInvalidInput, "message needs text or media")
	}
	if in.Media != nil {
		if err := in.Media.Validate(); err != nil {
			return nil, err
		}
	}

	var msg *models.Message
	var recipientID string

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, "id = ?", in.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errors.Wrap(err, "load conversation")
		}
		if !conv.HasParticipant(in.SenderID) || !conv.ActiveFor(in.SenderID) {
			return ErrUnauthorized
		}

		recipientID = conv.OtherParticipant(in.SenderID)
		blocked, err := m.rel.AreBlocking(ctx, in.SenderID, recipientID)
		if err != nil {
			return errors.Wrap(err, "block check")
		}
		if blocked {
			return ErrBlocked
		}

		if in.ReplyToID != nil {
			var replyTo models.Message
			if err := tx.First(&replyTo, "id = ?", *in.ReplyToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Wrap(ErrNotFound, "reply target")
				}
				return errors.Wrap(err, "load reply target")
			}
			if replyTo.ConversationID != conv.ID || replyTo.IsDeleted {
				return errors.Wrap(ErrNotFound, "reply target")
			}
		}

		now := time.Now().UTC()
		msg = &models.Message{
			ConversationID: conv.ID,
			SenderID:       in.SenderID,
			Content:        in.Content,
			ReplyToID:      in.ReplyToID,
			SentAt:         now,
		}
		if in.Media != nil {
			kind := string(in.Media.Kind)
			msg.MediaURL = &in.Media.URL
			msg.MediaKind = &kind
			msg.MediaMimeType = &in.Media.MimeType
			if in.Media.FileName != "" {
				msg.MediaFileName = &in.Media.FileName
			}
			msg.MediaSize = &in.Media.SizeBytes
		}
		if err := tx.Create(msg).Error; err != nil {
			return errors.Wrap(err, "persist message")
		}

		// Column-scoped write: a markRead or hide committing between the
		// First above and this update keeps its own columns. A new message
		// also resurfaces the thread for both sides, even when the recipient
		// had hidden it.
		summaryUpdates := map[string]interface{}{
			"last_message_at":        now,
			"last_message_summary":   messageSummary(msg),
			"last_message_sender_id": msg.SenderID,
			"message_count":          gorm.Expr("message_count + ?", 1),
			"is_active_for_a":        true,
			"is_active_for_b":        true,
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(summaryUpdates).Error; err != nil {
			return errors.Wrap(err, "update conversation summary")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.cache.UnreadIncr(ctx, in.ConversationID, recipientID)
	m.cache.InvalidateMessages(ctx, in.ConversationID)
	m.cache.InvalidateConversationList(ctx, in.SenderID, recipientID)

	if info, err := m.users.DisplayInfo(ctx, in.SenderID); err == nil {
		msg.Sender = models.User{
			ID:           info.ID,
			DisplayName:  info.DisplayName,
			AvatarURL:    info.AvatarURL,
			LastActiveAt: info.LastActiveAt,
		}
	}
	return msg, nil
}

func messageSummary(msg *models.Message) string {
	if msg.Content != nil && *msg.Content != "" {
		return TruncateSummary(*msg.Content)
	}
	if msg.MediaKind != nil {
		fileName := ""
		if msg.MediaFileName != nil {
			fileName = *msg.MediaFileName
		}
		return SummaryLabel(MediaKind(*msg.MediaKind), fileName)
	}
	return ""
}

// List pages backward through a conversation's non-deleted messages. The
// cursor is an exclusive bound on sentAt; nil means "newest page". Pages are
// fetched newest-first and returned oldest-first for chat-log display.
func (m *Messages) List(ctx context.Context, convID, requesterID string, pageSize int, before *time.Time) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var conv models.Conversation
	if err := m.db.WithContext(ctx).First(&conv, "id = ?", convID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load conversation")
	}
	if !conv.HasParticipant(requesterID) || !conv.ActiveFor(requesterID) {
		return nil, ErrUnauthorized
	}

	fromCache := false
	var msgs []models.Message
	if before == nil && pageSize == DefaultPageSize {
		msgs, fromCache = m.cache.RecentMessages(ctx, convID)
	}

	if !fromCache {
		q := m.db.WithContext(ctx).
			Where("conversation_id = ? AND is_deleted = ?", convID, false)
		if before != nil {
			q = q.Where("sent_at < ?", *before)
		}
		err := q.Order("sent_at DESC").
			Limit(pageSize).
			Preload("Sender").
			Find(&msgs).Error
		if err != nil {
			return nil, errors.Wrap(err, "list messages")
		}
		if before == nil && pageSize == DefaultPageSize {
			m.cache.SetRecentMessages(ctx, convID, msgs)
		}
	}

	page := &Page{HasMore: len(msgs) == pageSize}
	// Reverse into oldest-first order for display.
	page.Messages = make([]models.Message, len(msgs))
	for i, msg := range msgs {
		page.Messages[len(msgs)-1-i] = msg
	}
	return page, nil
}

// Delete soft-deletes a sender's own message: content cleared, reactions
// cascaded away, and the conversation summary repaired when the deleted
// message was the latest one. Returns false without error when the message
// is missing, already deleted, or not owned by the requester.
func (m *Messages) Delete(ctx context.Context, messageID, requesterID string) (bool, error) {
	deleted := false
	var convID string
	var userA, userB string

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, "id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return errors.Wrap(err, "load message")
		}
		if msg.IsDeleted || msg.SenderID != requesterID {
			return nil
		}

		var conv models.Conversation
		if err := tx.First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
			return errors.Wrap(err, "load conversation")
		}

		updates := map[string]interface{}{
			"content":    nil,
			"is_deleted": true,
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", msg.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "soft delete message")
		}
		if err := tx.Where("message_id = ?", msg.ID).Delete(&models.MessageReaction{}).Error; err != nil {
			return errors.Wrap(err, "cascade reactions")
		}

		// Column-scoped like Send: read markers and visibility flags written
		// concurrently stay intact.
		repair := map[string]interface{}{
			"message_count": gorm.Expr("CASE WHEN message_count > 0 THEN message_count - 1 ELSE 0 END"),
		}
		wasLast := conv.LastMessageAt != nil &&
			msg.SentAt.Equal(*conv.LastMessageAt) &&
			conv.LastMessageSenderID != nil &&
			*conv.LastMessageSenderID == msg.SenderID
		if wasLast {
			var next models.Message
			err := tx.Where("conversation_id = ? AND is_deleted = ? AND id <> ?", conv.ID, false, msg.ID).
				Order("sent_at DESC").
				First(&next).Error
			switch {
			case err == nil:
				repair["last_message_at"] = next.SentAt
				repair["last_message_summary"] = messageSummary(&next)
				repair["last_message_sender_id"] = next.SenderID
			case errors.Is(err, gorm.ErrRecordNotFound):
				repair["last_message_at"] = nil
				repair["last_message_summary"] = ""
				repair["last_message_sender_id"] = nil
			default:
				return errors.Wrap(err, "find next last message")
			}
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(repair).Error; err != nil {
			return errors.Wrap(err, "repair conversation summary")
		}

		deleted = true
		convID = conv.ID
		userA, userB = conv.UserAID, conv.UserBID
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		// The deleted message may have been counted unread; force recompute.
		m.cache.UnreadInvalidate(ctx, convID, userA, userB)
		m.cache.InvalidateMessages(ctx, convID)
		m.cache.InvalidateConversationList(ctx, userA, userB)
	}
	return deleted, nil
}

// Get loads a single non-deleted message.
func (m *Messages) Get(ctx context.Context, messageID string) (*models.Message, error) {
	var msg models.Message
	if err := m.db.WithContext(ctx).First(&msg, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load message")
	}
	if msg.IsDeleted {
		return nil, ErrNotFound
	}
	return &msg, nil
}
