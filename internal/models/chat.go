package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the durable 1:1 thread between two users. The pair is
// canonicalized so UserAID < UserBID, which makes (user_a_id, user_b_id)
// unique and prevents duplicate threads for the same pair.
type Conversation struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	UserAID   string    `gorm:"uniqueIndex:idx_conversation_pair;type:text;not null" json:"userAId"`
	UserBID   string    `gorm:"uniqueIndex:idx_conversation_pair;type:text;not null" json:"userBId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	LastMessageAt       *time.Time `gorm:"index" json:"lastMessageAt"`
	LastMessageSummary  string     `gorm:"type:text" json:"lastMessageSummary"`
	LastMessageSenderID *string    `gorm:"type:text" json:"lastMessageSenderId"`

	LastReadAtA *time.Time `json:"lastReadAtA"`
	LastReadAtB *time.Time `json:"lastReadAtB"`

	// A hidden conversation keeps its row and history; it is reactivated
	// automatically on the next message exchange.
	IsActiveForA bool `gorm:"default:true" json:"isActiveForA"`
	IsActiveForB bool `gorm:"default:true" json:"isActiveForB"`

	MessageCount int64 `gorm:"default:0" json:"messageCount"`

	UserA User `gorm:"foreignKey:UserAID" json:"-"`
	UserB User `gorm:"foreignKey:UserBID" json:"-"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CanonicalPair orders two user ids so the smaller one is always first.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the id of the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

func (c *Conversation) LastReadFor(userID string) *time.Time {
	if c.UserAID == userID {
		return c.LastReadAtA
	}
	return c.LastReadAtB
}

func (c *Conversation) SetLastRead(userID string, t time.Time) {
	if c.UserAID == userID {
		c.LastReadAtA = &t
	} else {
		c.LastReadAtB = &t
	}
}

// LastReadColumn names the read-marker column for userID's side, for
// column-scoped updates.
func (c *Conversation) LastReadColumn(userID string) string {
	if c.UserAID == userID {
		return "last_read_at_a"
	}
	return "last_read_at_b"
}

// ActiveColumn names the visibility flag column for userID's side.
func (c *Conversation) ActiveColumn(userID string) string {
	if c.UserAID == userID {
		return "is_active_for_a"
	}
	return "is_active_for_b"
}

func (c *Conversation) ActiveFor(userID string) bool {
	if c.UserAID == userID {
		return c.IsActiveForA
	}
	return c.IsActiveForB
}

func (c *Conversation) SetActiveFor(userID string, active bool) {
	if c.UserAID == userID {
		c.IsActiveForA = active
	} else {
		c.IsActiveForB = active
	}
}

// Message is an append-only chat message. Deletion is soft: content is
// cleared and IsDeleted set, the row stays for thread integrity.
type Message struct {
	ID             string `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string `gorm:"index:idx_messages_conv_sent;type:text;not null" json:"conversationId"`
	SenderID       string `gorm:"index;type:text;not null" json:"senderId"`

	// Nullable: media-only messages carry no text.
	Content *string `gorm:"type:text" json:"content"`

	MediaURL      *string `gorm:"type:text" json:"mediaUrl,omitempty"`
	MediaKind     *string `gorm:"type:text" json:"mediaKind,omitempty"`
	MediaMimeType *string `gorm:"type:text" json:"mediaMimeType,omitempty"`
	MediaFileName *string `gorm:"type:text" json:"mediaFileName,omitempty"`
	MediaSize     *int64  `json:"mediaSizeBytes,omitempty"`

	// Self-referential, must point into the same conversation.
	ReplyToID *string  `gorm:"type:text;index" json:"replyToId,omitempty"`
	ReplyTo   *Message `gorm:"-" json:"replyTo,omitempty"`

	SentAt    time.Time `gorm:"index:idx_messages_conv_sent" json:"sentAt"`
	IsDeleted bool      `gorm:"default:false;index" json:"isDeleted"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// MessageReaction holds at most one row per (message, user); a repeat
// reaction of the same kind toggles the row away, a different kind updates
// it in place.
type MessageReaction struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	MessageID string    `gorm:"uniqueIndex:idx_message_reaction_user;type:text;not null" json:"messageId"`
	UserID    string    `gorm:"uniqueIndex:idx_message_reaction_user;type:text;not null" json:"userId"`
	Kind      string    `gorm:"type:text;not null" json:"reactionType"`
	CreatedAt time.Time `json:"createdAt"`

	Message Message `gorm:"foreignKey:MessageID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
