package routes

import (
	"devmon/internal/controllers"
	"devmon/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the UI websocket and token endpoints. Token
// issuance gets a stricter rate limit than the rest of the API.
func RegisterAuthRoutes(r *gin.Engine, tokenLimiter *middleware.TokenRateLimiter) {
	// WebSocket endpoint for real-time snapshots
	r.GET("/ws", controllers.HandleWebSocket)

	auth := r.Group("/auth")
	{
		auth.GET("/token", middleware.TokenRateLimitMiddleware(tokenLimiter), controllers.HandleGetToken)
		auth.GET("/status", controllers.HandleTokenStatus)
	}
}
