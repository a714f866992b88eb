package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/handlers"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

func RegisterAdminRoutes(r gin.IRouter) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/users", handlers.AdminListUsers)
		admin.PATCH("/users/:id/role", handlers.AdminSetUserRole)
		admin.DELETE("/users/:id", handlers.AdminDeactivateUser)
	}
}
