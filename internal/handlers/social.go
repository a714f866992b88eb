package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

func lookupUserByUsername(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := database.DB.First(&user, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// FollowUser creates a follow link. Blocked pairs cannot follow.
func FollowUser(c *gin.Context) {
	followerID := c.MustGet("userId").(string)
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}
	if target.ID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var blocks int64
	database.DB.Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			followerID, target.ID, target.ID, followerID).
		Count(&blocks)
	if blocks > 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot follow this user"})
		return
	}

	link := models.UserLink{FollowerID: followerID, FollowedID: target.ID}
	if err := database.DB.Create(&link).Error; err != nil {
		// Unique index: already following.
		c.JSON(http.StatusOK, gin.H{"following": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true})
}

// UnfollowUser removes the follow link if present.
func UnfollowUser(c *gin.Context) {
	followerID := c.MustGet("userId").(string)
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}

	database.DB.Delete(&models.UserLink{}, "follower_id = ? AND followed_id = ?", followerID, target.ID)
	c.JSON(http.StatusOK, gin.H{"following": false})
}

// GetFollowStatus reports following / followed-by / friends for the target.
func GetFollowStatus(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}

	var following, followedBy int64
	database.DB.Model(&models.UserLink{}).
		Where("follower_id = ? AND followed_id = ?", userID, target.ID).Count(&following)
	database.DB.Model(&models.UserLink{}).
		Where("follower_id = ? AND followed_id = ?", target.ID, userID).Count(&followedBy)

	c.JSON(http.StatusOK, gin.H{
		"following":  following > 0,
		"followedBy": followedBy > 0,
		"friends":    following > 0 && followedBy > 0,
	})
}

// ListFollowers returns who follows the target user.
func ListFollowers(c *gin.Context) {
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}

	var links []models.UserLink
	if err := database.DB.Preload("Follower").
		Where("followed_id = ?", target.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}

	users := make([]models.User, 0, len(links))
	for _, link := range links {
		users = append(users, link.Follower)
	}
	c.JSON(http.StatusOK, gin.H{"followers": users})
}

// ListFollowing returns who the target user follows.
func ListFollowing(c *gin.Context) {
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}

	var links []models.UserLink
	if err := database.DB.Preload("Followed").
		Where("follower_id = ?", target.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}

	users := make([]models.User, 0, len(links))
	for _, link := range links {
		users = append(users, link.Followed)
	}
	c.JSON(http.StatusOK, gin.H{"following": users})
}

// BlockUser blocks the target and severs any follow links both ways.
func BlockUser(c *gin.Context) {
	blockerID := c.MustGet("userId").(string)
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}
	if target.ID == blockerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block yourself"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		block := models.UserBlock{BlockerID: blockerID, BlockedID: target.ID}
		if err := tx.Create(&block).Error; err != nil {
			// Already blocked; keep the link cleanup idempotent.
			_ = err
		}
		return tx.Delete(&models.UserLink{},
			"(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
			blockerID, target.ID, target.ID, blockerID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Block failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

// UnblockUser removes the requester's block on the target.
func UnblockUser(c *gin.Context) {
	blockerID := c.MustGet("userId").(string)
	target, ok := lookupUserByUsername(c)
	if !ok {
		return
	}

	if err := database.DB.Delete(&models.UserBlock{},
		"blocker_id = ? AND blocked_id = ?", blockerID, target.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unblock failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}

// GetBlockedUsers lists users the requester has blocked.
func GetBlockedUsers(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var blocks []models.UserBlock
	if err := database.DB.Where("blocker_id = ?", userID).Find(&blocks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blocks"})
		return
	}

	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.BlockedID)
	}
	var users []models.User
	if len(ids) > 0 {
		database.DB.Where("id IN ?", ids).Find(&users)
	}
	c.JSON(http.StatusOK, gin.H{"blocked": users})
}
