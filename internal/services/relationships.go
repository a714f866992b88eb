package services

import (
	"context"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Relationships answers the chat engine's friendship and block questions
// from the social graph tables.
type Relationships struct {
	db *gorm.DB
}

func NewRelationships(db *gorm.DB) *Relationships {
	return &Relationships{db: db}
}

// AreFriends is the symmetric mutual-follow check: both users must follow
// each other.
func (r *Relationships) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserLink{}).
		Where("(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
			userA, userB, userB, userA).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "count follow links")
	}
	return n == 2, nil
}

// AreBlocking reports whether a block exists in either direction.
func (r *Relationships) AreBlocking(ctx context.Context, userA, userB string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "count blocks")
	}
	return n > 0, nil
}
