package controllers

import (
	"net/http"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

// GetSettings returns the decoded editor settings (comments stripped) and
// the path they were loaded from
func GetSettings(c *gin.Context) {
	settings, err := services.GetSettingsService().Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
