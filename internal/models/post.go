package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AuthorID string `gorm:"index;type:text;not null" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Content  string  `gorm:"type:text" json:"content"`
	MediaURL *string `gorm:"type:text" json:"mediaUrl,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

type Comment struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PostID string `gorm:"index;type:text;not null" json:"postId"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	AuthorID string `gorm:"index;type:text;not null" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ReactionTarget tags what a Reaction row points at. Message reactions live
// in their own ledger (MessageReaction) because they cascade with message
// soft-deletes; posts and comments share this one.
type ReactionTarget string

const (
	ReactionTargetPost    ReactionTarget = "POST"
	ReactionTargetComment ReactionTarget = "COMMENT"
)

// Reaction is the tagged-target reaction ledger for posts and comments,
// unique per (target, user) with the same toggle semantics as message
// reactions.
type Reaction struct {
	ID         string         `gorm:"primaryKey;type:text" json:"id"`
	TargetType ReactionTarget `gorm:"uniqueIndex:idx_reaction_target_user;type:text;not null" json:"targetType"`
	TargetID   string         `gorm:"uniqueIndex:idx_reaction_target_user;type:text;not null" json:"targetId"`
	UserID     string         `gorm:"uniqueIndex:idx_reaction_target_user;type:text;not null" json:"userId"`
	Kind       string         `gorm:"type:text;not null" json:"reactionType"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
