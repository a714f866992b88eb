package services

import (
	"context"
	"time"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// OnlineFreshness is the lastActiveAt window inside which a user still
// counts as recently active for derived online-ness.
const OnlineFreshness = 60 * time.Second

// Users is the user-directory collaborator consumed by the chat engine.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) Exists(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return n > 0, nil
}

// IsDeleted reports whether the user id once existed but is soft-deleted.
func (u *Users) IsDeleted(ctx context.Context, userID string) (bool, error) {
	var user models.User
	err := u.db.WithContext(ctx).Unscoped().
		Select("id", "deleted_at").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "load user")
	}
	return user.DeletedAt.Valid, nil
}

func (u *Users) DisplayInfo(ctx context.Context, userID string) (chat.UserInfo, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.UserInfo{}, chat.ErrNotFound
		}
		return chat.UserInfo{}, errors.Wrap(err, "load user")
	}
	return chat.UserInfo{
		ID:           user.ID,
		DisplayName:  user.DisplayName,
		AvatarURL:    user.AvatarURL,
		LastActiveAt: user.LastActiveAt,
	}, nil
}

// TouchLastActive stamps the freshness marker that feeds derived
// online-ness. Throttled by the caller; the write itself is cheap.
func (u *Users) TouchLastActive(ctx context.Context, userID string) {
	now := time.Now().UTC()
	u.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_active_at", now)
}
