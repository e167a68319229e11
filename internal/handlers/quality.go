package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"joyex-backend/internal/quality"
)

type QualityHandler struct {
	monitor *quality.Monitor
}

func NewQualityHandler(monitor *quality.Monitor) *QualityHandler {
	return &QualityHandler{monitor: monitor}
}

// GetQualityReport godoc
// @Summary     Generation quality report
// @Description Returns aggregate statistics, recommendations and the most recent raw samples recorded for generation requests
// @Tags        quality
// @Produce     json
// @Security    Bearer
// @Success     200 {object} quality.Export
// @Failure     401 {object} models.ErrorResponse
// @Router      /quality/stats [get]
func (h *QualityHandler) GetQualityReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Export())
}

// ClearQualityMetrics godoc
// @Summary     Clear quality metrics
// @Tags        quality
// @Security    Bearer
// @Success     204
// @Failure     401 {object} models.ErrorResponse
// @Router      /quality/stats [delete]
func (h *QualityHandler) ClearQualityMetrics(c *gin.Context) {
	h.monitor.Clear()
	c.Status(http.StatusNoContent)
}
