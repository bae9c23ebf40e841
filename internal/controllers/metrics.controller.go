package controllers

import (
	"net/http"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

// GetSnapshot returns the full latest snapshot, or 503 when no tick has
// published yet (sampler not running or first tick pending). The section
// handlers below follow the same rule.
func GetSnapshot(c *gin.Context) {
	snapshot, updatedAt, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":     snapshot,
		"last_updated": updatedAt,
	})
}

func GetCPU(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"load_percent": snapshot.CPULoad,
		"identity":     snapshot.CPU,
	})
}

func GetMemory(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, snapshot.Memory)
}

func GetDisk(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	if snapshot.Disk == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no mounted filesystems reported"})
		return
	}
	c.JSON(http.StatusOK, snapshot.Disk)
}

func GetGPU(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	if snapshot.GPU == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no graphics controller reported"})
		return
	}
	c.JSON(http.StatusOK, snapshot.GPU)
}

func GetHost(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"os":  snapshot.OS,
		"cpu": snapshot.CPU,
	})
}
