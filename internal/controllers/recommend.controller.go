package controllers

import (
	"net/http"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

// PostRecommendations asks the AI provider for optimization advice based on
// the latest snapshot. 409 when no snapshot exists yet, 502 when the
// provider call fails.
func PostRecommendations(c *gin.Context) {
	snapshot, _, ok := services.GetSnapshotCache().Latest()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no snapshot to analyze yet"})
		return
	}

	recommendation, err := services.GetRecommendationService().Recommend(c.Request.Context(), snapshot)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recommendation)
}
