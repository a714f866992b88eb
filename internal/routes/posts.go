package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterPostRoutes(r gin.IRouter) {
	posts := r.Group("/posts")
	{
		posts.GET("", handlers.ListPosts)
		posts.GET("/:id", handlers.GetPost)
		posts.GET("/:id/comments", handlers.ListComments)

		authed := posts.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("", handlers.CreatePost)
			authed.DELETE("/:id", handlers.DeletePost)
			authed.POST("/:id/comments", handlers.AddComment)
		}
	}

	comments := r.Group("/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.DELETE("/:id", handlers.DeleteComment)
	}

	reactions := r.Group("/reactions")
	{
		reactions.GET("", handlers.GetTargetReactions)
		reactions.POST("", middleware.AuthMiddleware(), handlers.ReactToTarget)
	}
}
