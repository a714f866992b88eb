package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

type postRequest struct {
	Content  string  `json:"content" binding:"required"`
	MediaURL *string `json:"mediaUrl"`
}

func CreatePost(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	post := models.Post{
		AuthorID: userID,
		Content:  utils.SanitizeHTML(req.Content),
		MediaURL: req.MediaURL,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	database.DB.Preload("Author").First(&post, "id = ?", post.ID)
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func GetPost(c *gin.Context) {
	var post models.Post
	if err := database.DB.Preload("Author").First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// ListPosts pages a user's posts newest-first; ?author=<username> scopes it.
func ListPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	q := database.DB.Preload("Author").Order("created_at DESC").Limit(limit).Offset(offset)
	if author := c.Query("author"); author != "" {
		var user models.User
		if err := database.DB.First(&user, "username = ?", author).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		q = q.Where("author_id = ?", user.ID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func DeletePost(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	result := database.DB.Delete(&models.Post{}, "id = ? AND author_id = ?", c.Param("id"), userID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func AddComment(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	postID := c.Param("id")

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  utils.SanitizeHTML(req.Content),
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}
	database.DB.Preload("Author").First(&comment, "id = ?", comment.ID)
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func ListComments(c *gin.Context) {
	var comments []models.Comment
	if err := database.DB.Preload("Author").
		Where("post_id = ?", c.Param("id")).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func DeleteComment(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	result := database.DB.Delete(&models.Comment{}, "id = ? AND author_id = ?", c.Param("id"), userID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ReactToTarget toggles the requester's reaction on a post or comment using
// the same semantics as message reactions: same kind removes, different
// kind updates in place.
func ReactToTarget(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req struct {
		TargetType   string `json:"targetType" binding:"required"`
		TargetID     string `json:"targetId" binding:"required"`
		ReactionType string `json:"reactionType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !chat.ReactionKinds[req.ReactionType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown reaction type"})
		return
	}

	var target models.ReactionTarget
	switch models.ReactionTarget(req.TargetType) {
	case models.ReactionTargetPost:
		target = models.ReactionTargetPost
		var post models.Post
		if err := database.DB.First(&post, "id = ?", req.TargetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
	case models.ReactionTargetComment:
		target = models.ReactionTargetComment
		var comment models.Comment
		if err := database.DB.First(&comment, "id = ?", req.TargetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown target type"})
		return
	}

	applied := true
	var existing models.Reaction
	err := database.DB.
		Where("target_type = ? AND target_id = ? AND user_id = ?", target, req.TargetID, userID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := models.Reaction{
			TargetType: target,
			TargetID:   req.TargetID,
			UserID:     userID,
			Kind:       req.ReactionType,
		}
		if err := database.DB.Create(&reaction).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reaction failed"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reaction failed"})
		return
	case existing.Kind == req.ReactionType:
		database.DB.Delete(&existing)
		applied = false
	default:
		database.DB.Model(&existing).Update("kind", req.ReactionType)
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// GetTargetReactions aggregates reaction counts for a post or comment.
func GetTargetReactions(c *gin.Context) {
	targetType := c.Query("targetType")
	targetID := c.Query("targetId")
	if targetType == "" || targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetType and targetId required"})
		return
	}

	var rows []models.Reaction
	if err := database.DB.
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reactions"})
		return
	}

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Kind]++
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts, "totalCount": len(rows)})
}
