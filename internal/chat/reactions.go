package chat

import (
	"context"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ReactionOutcome says what a React call did to the user's reaction row.
type ReactionOutcome int

const (
	ReactionApplied ReactionOutcome = iota
	ReactionRemoved
)

// ReactionKinds is the closed set of accepted reaction types.
var ReactionKinds = map[string]bool{
	"like":  true,
	"love":  true,
	"haha":  true,
	"wow":   true,
	"sad":   true,
	"angry": true,
}

// recentReactionLimit caps the recency list in summaries.
const recentReactionLimit = 5

// Reactions is the per-message single-reaction-per-user ledger.
type Reactions struct {
	db *gorm.DB
}

func NewReactions(db *gorm.DB) *Reactions {
	return &Reactions{db: db}
}

// React toggles the requester's reaction on a message: no existing row
// inserts one, an identical kind removes it, a different kind updates it in
// place. Only conversation participants may react.
func (r *Reactions) React(ctx context.Context, messageID, userID, kind string) (ReactionOutcome, error) {
	if !ReactionKinds[kind] {
		return 0, errors.Wrapf(ErrInvalidInput, "unknown reaction type %q", kind)
	}

	outcome := ReactionApplied
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, conv, err := loadMessageConversation(tx, messageID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(userID) {
			return ErrUnauthorized
		}

		var existing models.MessageReaction
		err = tx.Where("message_id = ? AND user_id = ?", msg.ID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.MessageReaction{
				MessageID: msg.ID,
				UserID:    userID,
				Kind:      kind,
			}
			if err := tx.Create(&reaction).Error; err != nil {
				return errors.Wrap(err, "insert reaction")
			}
			outcome = ReactionApplied
		case err != nil:
			return errors.Wrap(err, "load reaction")
		case existing.Kind == kind:
			if err := tx.Delete(&existing).Error; err != nil {
				return errors.Wrap(err, "remove reaction")
			}
			outcome = ReactionRemoved
		default:
			if err := tx.Model(&existing).Update("kind", kind).Error; err != nil {
				return errors.Wrap(err, "update reaction")
			}
			outcome = ReactionApplied
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ReactionSummary aggregates one message's reactions for display.
type ReactionSummary struct {
	Counts           map[string]int64         `json:"counts"`
	HasReacted       bool                     `json:"hasReactedByRequester"`
	RequesterKind    *string                  `json:"requesterReactionType,omitempty"`
	RecentReactions  []models.MessageReaction `json:"recentReactions"`
	TotalCount       int64                    `json:"totalCount"`
}

// Summary returns per-kind counts, the requester's own state and the most
// recent reactions.
func (r *Reactions) Summary(ctx context.Context, messageID, requesterID string) (*ReactionSummary, error) {
	db := r.db.WithContext(ctx)

	msg, conv, err := loadMessageConversation(db, messageID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, ErrUnauthorized
	}

	var rows []models.MessageReaction
	if err := db.Where("message_id = ?", msg.ID).
		Order("created_at DESC").
		Preload("User").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load reactions")
	}

	summary := &ReactionSummary{
		Counts:     map[string]int64{},
		TotalCount: int64(len(rows)),
	}
	for _, row := range rows {
		summary.Counts[row.Kind]++
		if row.UserID == requesterID {
			summary.HasReacted = true
			kind := row.Kind
			summary.RequesterKind = &kind
		}
	}
	if len(rows) > recentReactionLimit {
		rows = rows[:recentReactionLimit]
	}
	summary.RecentReactions = rows
	return summary, nil
}

func loadMessageConversation(tx *gorm.DB, messageID string) (*models.Message, *models.Conversation, error) {
	var msg models.Message
	if err := tx.First(&msg, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "load message")
	}
	if msg.IsDeleted {
		return nil, nil, ErrNotFound
	}
	var conv models.Conversation
	if err := tx.First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "load conversation")
	}
	return &msg, &conv, nil
}
