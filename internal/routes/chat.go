package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.GET("/conversations", handlers.GetConversations)
		chat.POST("/conversations", handlers.OpenConversation)
		chat.GET("/conversations/:id/messages", handlers.GetMessages)
		chat.POST("/conversations/:id/messages", middleware.ChatRateLimit(), handlers.SendMessage)
		chat.POST("/conversations/:id/read", handlers.MarkConversationRead)
		chat.DELETE("/conversations/:id", handlers.HideConversation)
		chat.GET("/conversations/:id/typing", handlers.GetTypingUsers)

		chat.DELETE("/messages/:id", handlers.DeleteMessage)
		chat.POST("/messages/:id/reactions", handlers.ReactToMessage)
		chat.GET("/messages/:id/reactions", handlers.GetMessageReactions)

		chat.GET("/online-status", handlers.GetOnlineStatus)
	}
}
