package api

import (
	"net/http"

	authdelivery "minimalist-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authRequired := authdelivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/google", h.authHandler.GoogleLogin)
			auth.GET("/google/callback", h.authHandler.GoogleCallback)
			auth.POST("/google", h.authHandler.GoogleSignIn)
			auth.POST("/refresh", h.authHandler.RefreshToken)
			auth.POST("/logout", h.authHandler.Logout)
			auth.GET("/me", authRequired, h.authHandler.Me)

			// QR handoff to a second device
			auth.POST("/share", authRequired, h.authHandler.CreateShare)
			auth.GET("/share/qr", authRequired, h.authHandler.ShareQR)
			auth.POST("/share/redeem", h.authHandler.RedeemShare)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authRequired)
		{
			fcm.POST("/register", h.authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", h.authHandler.UnregisterFCMToken)
		}

		// Todo routes (protected); static paths before /:id
		todos := api.Group("/todos")
		todos.Use(authRequired)
		{
			todos.GET("", h.todoHandler.GetTodos)
			todos.POST("", h.todoHandler.CreateTodo)
			todos.GET("/stats", h.todoHandler.GetStats)
			todos.GET("/search", h.todoHandler.SearchTodos)
			todos.PATCH("/reorder", h.todoHandler.ReorderTodos)
			todos.GET("/:id", h.todoHandler.GetTodo)
			todos.PUT("/:id", h.todoHandler.UpdateTodo)
			todos.PATCH("/:id/toggle", h.todoHandler.ToggleTodo)
			todos.DELETE("/:id", h.todoHandler.DeleteTodo)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
