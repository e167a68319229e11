package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"joyex-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API and whether generation runs live or in demo mode
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(generationMode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "ok",
			GenerationMode: generationMode,
		})
	}
}
