package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterUploadRoutes(r gin.IRouter) {
	upload := r.Group("/upload")
	upload.Use(middleware.AuthMiddleware(), middleware.UploadRateLimit())
	{
		upload.POST("/profile-image", handlers.UploadProfileImage)
		upload.POST("/chat-attachment", handlers.UploadChatAttachment)
		upload.POST("/post-media", handlers.UploadPostMedia)

		// Generic
		upload.POST("", handlers.UploadMedia)
	}
}
