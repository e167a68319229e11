package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"joyex-backend/internal/accuracy"
	"joyex-backend/internal/fal"
	"joyex-backend/internal/models"
)

// ListPresets godoc
// @Summary     List accuracy presets
// @Description Returns every accuracy preset with its generation parameters and policy check, plus the supported output sizes
// @Tags        presets
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PresetListResponse
// @Router      /presets [get]
func ListPresets(c *gin.Context) {
	response := models.PresetListResponse{
		Presets: make([]models.PresetResponse, 0, len(accuracy.Names())),
		Sizes:   fal.SupportedSizes,
	}

	for _, name := range accuracy.Names() {
		cfg := accuracy.Get(name)
		violations := accuracy.Violations(cfg)
		response.Presets = append(response.Presets, models.PresetResponse{
			Name:                cfg.Name,
			Strength:            cfg.Strength,
			Guidance:            cfg.Guidance,
			GuidanceScale:       cfg.GuidanceScale,
			InferenceSteps:      cfg.InferenceSteps,
			EnableSafetyChecker: cfg.EnableSafetyChecker,
			Valid:               len(violations) == 0,
			Violations:          violations,
		})
	}

	c.JSON(http.StatusOK, response)
}
