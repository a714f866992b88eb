package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserLink represents a follower/following relationship. Two users are
// "friends" when links exist in both directions.
type UserLink struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	FollowerID string `gorm:"uniqueIndex:idx_follower_followed;type:text;not null" json:"followerId"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`

	FollowedID string `gorm:"uniqueIndex:idx_follower_followed;type:text;not null" json:"followedId"`
	Followed   User   `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
}

func (ul *UserLink) BeforeCreate(tx *gorm.DB) (err error) {
	if ul.ID == "" {
		ul.ID = uuid.New().String()
	}
	return
}

// UserBlock represents one user blocking another. Block checks in the chat
// engine are symmetric: a block in either direction denies contact.
type UserBlock struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	BlockerID string    `gorm:"uniqueIndex:idx_blocker_blocked;type:text;not null" json:"blockerId"`
	BlockedID string    `gorm:"uniqueIndex:idx_blocker_blocked;type:text;not null" json:"blockedId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ub *UserBlock) BeforeCreate(tx *gorm.DB) (err error) {
	if ub.ID == "" {
		ub.ID = uuid.New().String()
	}
	return
}
