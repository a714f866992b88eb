package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterUserRoutes(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("/search", handlers.SearchUsers)
		users.GET("/:username", middleware.OptionalAuthMiddleware(), handlers.GetProfile)
		users.GET("/:username/followers", handlers.ListFollowers)
		users.GET("/:username/following", handlers.ListFollowing)
	}

	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware())
	{
		me.PATCH("/profile", handlers.UpdateProfile)
	}
}
