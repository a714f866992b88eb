package chat

import (
	"context"
	"time"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/logger"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RelationshipChecker is the external relationship collaborator: mutual
// follow ("friendship") and symmetric block checks.
type RelationshipChecker interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	AreBlocking(ctx context.Context, userA, userB string) (bool, error)
}

// Directory owns the one-conversation-per-pair invariant and the per-user
// read/hide state.
type Directory struct {
	db    *gorm.DB
	rel   RelationshipChecker
	cache *Cache
}

func NewDirectory(db *gorm.DB, rel RelationshipChecker, cache *Cache) *Directory {
	return &Directory{db: db, rel: rel, cache: cache}
}

// GetOrCreate finds or creates the single conversation between requester and
// other. The pair is canonicalized, so argument order never produces a
// second row. A row hidden for the requester is reactivated in place; its
// history and read markers are untouched.
func (d *Directory) GetOrCreate(ctx context.Context, requesterID, otherID string) (*models.Conversation, error) {
	if requesterID == otherID {
		return nil, errors.Wrap(ErrInvalidInput, "cannot open a conversation with yourself")
	}

	blocked, err := d.rel.AreBlocking(ctx, requesterID, otherID)
	if err != nil {
		return nil, errors.Wrap(err, "block check")
	}
	if blocked {
		return nil, ErrBlocked
	}

	friends, err := d.rel.AreFriends(ctx, requesterID, otherID)
	if err != nil {
		return nil, errors.Wrap(err, "friendship check")
	}
	if !friends {
		return nil, ErrNotFriends
	}

	userA, userB := models.CanonicalPair(requesterID, otherID)

	conv, err := d.findByPair(ctx, userA, userB)
	if err == nil {
		if !conv.ActiveFor(requesterID) {
			// Only the requester's flag; concurrent writes to the other
			// columns stay intact.
			if err := d.db.WithContext(ctx).Model(&models.Conversation{}).
				Where("id = ?", conv.ID).
				Update(conv.ActiveColumn(requesterID), true).Error; err != nil {
				return nil, errors.Wrap(err, "reactivate conversation")
			}
			conv.SetActiveFor(requesterID, true)
			d.cache.InvalidateConversationList(ctx, requesterID)
		}
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "find conversation")
	}

	conv = &models.Conversation{
		UserAID:      userA,
		UserBID:      userB,
		IsActiveForA: true,
		IsActiveForB: true,
	}
	if err := d.db.WithContext(ctx).Create(conv).Error; err != nil {
		// A concurrent GetOrCreate may have won the unique-index race;
		// re-read instead of failing.
		if existing, ferr := d.findByPair(ctx, userA, userB); ferr == nil {
			return existing, nil
		}
		return nil, errors.Wrap(err, "create conversation")
	}
	d.cache.InvalidateConversationList(ctx, requesterID, otherID)
	return conv, nil
}

func (d *Directory) findByPair(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", userA, userB).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Get loads a conversation by id regardless of participant state.
func (d *Directory) Get(ctx context.Context, convID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := d.db.WithContext(ctx).First(&conv, "id = ?", convID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load conversation")
	}
	return &conv, nil
}

// ListFor returns the requester's visible conversations, most recent
// activity first; conversations without messages sort by creation time.
func (d *Directory) ListFor(ctx context.Context, userID string) ([]models.Conversation, error) {
	if cached, ok := d.cache.ConversationList(ctx, userID); ok {
		return cached, nil
	}

	var convs []models.Conversation
	err := d.db.WithContext(ctx).
		Where("(user_a_id = ? AND is_active_for_a = ?) OR (user_b_id = ? AND is_active_for_b = ?)",
			userID, true, userID, true).
		Order("COALESCE(last_message_at, created_at) DESC").
		Find(&convs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}

	d.cache.SetConversationList(ctx, userID, convs)
	return convs, nil
}

// MarkRead stamps the requester's read marker and zeroes the cached unread
// counter.
func (d *Directory) MarkRead(ctx context.Context, convID, userID string) (*models.Conversation, error) {
	conv, err := d.Get(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) || !conv.ActiveFor(userID) {
		return nil, ErrUnauthorized
	}

	// Column-scoped: a message committed between the load above and this
	// write keeps its summary and counter.
	now := time.Now().UTC()
	if err := d.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", convID).
		Update(conv.LastReadColumn(userID), now).Error; err != nil {
		return nil, errors.Wrap(err, "mark read")
	}
	conv.SetLastRead(userID, now)

	d.cache.UnreadClear(ctx, convID, userID)
	d.cache.InvalidateConversationList(ctx, userID)
	return conv, nil
}

// Hide flips the requester's side of the conversation to inactive. The other
// participant's view is unaffected; the next message reactivates both sides.
func (d *Directory) Hide(ctx context.Context, convID, userID string) error {
	conv, err := d.Get(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrUnauthorized
	}

	if err := d.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", convID).
		Update(conv.ActiveColumn(userID), false).Error; err != nil {
		return errors.Wrap(err, "hide conversation")
	}

	d.cache.InvalidateConversationList(ctx, userID)
	return nil
}

// Purge hard-deletes a conversation and cascades to its messages and
// reactions. This is the only hard-delete path for messages.
func (d *Directory) Purge(ctx context.Context, convID, userID string) error {
	conv, err := d.Get(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrUnauthorized
	}

	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id IN (?)",
			tx.Model(&models.Message{}).Select("id").Where("conversation_id = ?", convID),
		).Delete(&models.MessageReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", convID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", convID).Error
	})
	if err != nil {
		return errors.Wrap(err, "purge conversation")
	}

	d.cache.UnreadInvalidate(ctx, convID, conv.UserAID, conv.UserBID)
	d.cache.InvalidateMessages(ctx, convID)
	d.cache.InvalidateConversationList(ctx, conv.UserAID, conv.UserBID)
	return nil
}

// UnreadCount returns the requester's unread total for one conversation.
// The cached counter is the fast path; on a miss the durable store is
// authoritative: messages from the other side, not deleted, sent at or
// after the read marker. An exact sentAt==lastReadAt tie counts as unread.
// If the recompute itself fails the count degrades to zero rather than
// failing the caller.
func (d *Directory) UnreadCount(ctx context.Context, convID, userID string) (int64, error) {
	if n, ok := d.cache.UnreadGet(ctx, convID, userID); ok {
		return n, nil
	}

	conv, err := d.Get(ctx, convID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, ErrUnauthorized
	}

	q := d.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_deleted = ?", convID, userID, false)
	if lastRead := conv.LastReadFor(userID); lastRead != nil {
		q = q.Where("sent_at >= ?", *lastRead)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		logger.Warn().Err(err).
			Str("conversationId", convID).
			Str("userId", userID).
			Msg("unread recompute failed, degrading to zero")
		return 0, nil
	}

	d.cache.UnreadSeed(ctx, convID, userID, n)
	return n, nil
}
