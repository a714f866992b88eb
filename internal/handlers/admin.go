package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

// AdminListUsers pages the user directory for the moderation console;
// ?q=<term> filters by username or email.
func AdminListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	q := database.DB.Order("created_at DESC").Limit(limit).Offset(offset)
	if search := c.Query("q"); search != "" {
		pattern := utils.SanitizeSearchQuery(search)
		q = q.Where("username LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	var total int64
	database.DB.Model(&models.User{}).Count(&total)
	c.JSON(http.StatusOK, gin.H{"users": users, "totalCount": total})
}

// AdminSetUserRole promotes or demotes an account.
func AdminSetUserRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		(req.Role != models.RoleUser && req.Role != models.RoleAdmin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	result := database.DB.Model(&models.User{}).
		Where("id = ?", c.Param("id")).
		Update("role", req.Role)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// AdminDeactivateUser soft-deletes an account. Their messages and
// conversations stay for thread integrity; auth and lookups reject the
// account from here on.
func AdminDeactivateUser(c *gin.Context) {
	adminID := c.MustGet("userId").(string)
	targetID := c.Param("id")
	if adminID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate your own account"})
		return
	}

	result := database.DB.Delete(&models.User{}, "id = ?", targetID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}
