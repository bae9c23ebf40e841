package routes

import (
	"devmon/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterMetricRoutes(r *gin.Engine) {
	metrics := r.Group("/metrics")
	{
		metrics.GET("/", controllers.GetSnapshot)
		metrics.GET("/cpu", controllers.GetCPU)
		metrics.GET("/memory", controllers.GetMemory)
		metrics.GET("/disk", controllers.GetDisk)
		metrics.GET("/gpu", controllers.GetGPU)
		metrics.GET("/host", controllers.GetHost)
	}

	r.GET("/history", controllers.GetHistory)
}
