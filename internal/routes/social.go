package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterSocialRoutes(r gin.IRouter) {
	social := r.Group("/social")
	social.Use(middleware.AuthMiddleware())
	{
		social.POST("/follow/:username", handlers.FollowUser)
		social.DELETE("/follow/:username", handlers.UnfollowUser)
		social.GET("/status/:username", handlers.GetFollowStatus)

		social.POST("/block/:username", handlers.BlockUser)
		social.DELETE("/block/:username", handlers.UnblockUser)
		social.GET("/blocked", handlers.GetBlockedUsers)
	}
}
