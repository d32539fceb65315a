package routes

import (
	"github.com/gin-gonic/gin"

	"studygate-bot/internal/api/auth"
	"studygate-bot/internal/api/handlers"
	"studygate-bot/internal/container"
)

func RegisterRoutes(r *gin.Engine, c *container.AppContainer) {
	api := r.Group("/api")
	{
		api.GET("/ping", handlers.PingHandler(c))
		api.POST("/auth/token", handlers.GenerateJWTHandler())
		api.GET("/auth/verify", handlers.VerifyJWTHandler())
	}

	protected := api.Group("/")
	protected.Use(auth.AuthMiddlewareJWT())
	{
		protected.GET("/plans", handlers.ListPlansHandler(c))
		protected.GET("/groups", handlers.ListGroupsHandler(c))
		protected.GET("/payments/pending", handlers.ListPendingPaymentsHandler(c))
		protected.GET("/stats", handlers.StatsHandler(c))
	}
}
