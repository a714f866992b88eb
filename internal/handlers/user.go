package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

// SearchUsers finds users by username or display name, partial match.
func SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}
	pattern := utils.SanitizeSearchQuery(query)

	var users []models.User
	if err := database.DB.
		Where("username LIKE ? OR display_name LIKE ?", pattern, pattern).
		Limit(20).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetProfile returns a user's public profile with derived online-ness.
func GetProfile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := database.DB.First(&user, "username = ?", username).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var followers, following int64
	database.DB.Model(&models.UserLink{}).Where("followed_id = ?", user.ID).Count(&followers)
	database.DB.Model(&models.UserLink{}).Where("follower_id = ?", user.ID).Count(&following)

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"followers": followers,
		"following": following,
		"isOnline":  isOnline(user.ID),
	})
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
}

// UpdateProfile patches the requester's own display fields.
func UpdateProfile(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	var user models.User
	database.DB.First(&user, "id = ?", userID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}
