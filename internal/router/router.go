package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"simlab-dashboard/internal/handler"
)

func RegisterRoutes(r *gin.Engine, sessions *handler.Sessions, authHandler *handler.AuthHandler, nodeHandler *handler.NodeHandler, wsHandler *handler.WSHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}
		api.GET("/session", authHandler.Session)

		nodes := api.Group("/nodes", sessions.Require())
		{
			nodes.GET("", nodeHandler.ListNodes)
			nodes.GET("/:node/metrics", nodeHandler.Metrics)
		}

		api.GET("/ws", wsHandler.Serve)
	}
}
