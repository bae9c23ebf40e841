package controllers

import (
	"net/http"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

// GetTopProcesses returns the ranked process list from the latest snapshot
func GetTopProcesses(c *gin.Context) {
	snapshot, updatedAt, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processes":    snapshot.Processes,
		"last_updated": updatedAt,
	})
}
