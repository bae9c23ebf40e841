package controllers

import (
	"net/http"
	"time"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

// GetHistory returns persisted snapshot points within a trailing window
// Query params: duration=5m|10m|1h|24h (default: 10m)
func GetHistory(c *gin.Context) {
	durationStr := c.DefaultQuery("duration", "10m")

	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
		return
	}

	points, err := services.GetHistoryService().Window(c.Request.Context(), duration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"duration": durationStr,
		"points":   points,
	})
}
