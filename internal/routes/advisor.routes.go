package routes

import (
	"devmon/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAdvisorRoutes exposes the editor settings reader and the AI
// recommendation endpoint.
func RegisterAdvisorRoutes(r *gin.Engine) {
	r.GET("/settings", controllers.GetSettings)
	r.POST("/recommendations", controllers.PostRecommendations)
}
