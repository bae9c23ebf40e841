package routes

import (
	"devmon/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterProcessRoutes(r *gin.Engine) {
	processes := r.Group("/processes")
	{
		processes.GET("/", controllers.GetTopProcesses)
	}
}
