package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"joyex-backend/internal/imaging"
	"joyex-backend/internal/models"
)

// maxAnalyzeBytes bounds a single analyze request.
const maxAnalyzeBytes = 64 << 20

// AnalyzeImages godoc
// @Summary     Analyze images
// @Description Scores each uploaded image for generation suitability (resolution, file size, aspect ratio) without storing it.
// @Description Files that cannot be decoded get a report with `error` set and a score of 0.
// @Tags        images
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Image file (repeatable)"
// @Success     200 {object} models.ImageReportsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /images/analyze [post]
func AnalyzeImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAnalyzeBytes)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "invalid multipart form: " + err.Error(),
		})
		return
	}

	files, _, _, err := readParts(reader, maxAnalyzeBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files provided"})
		return
	}

	response := models.ImageReportsResponse{Reports: make([]models.ImageReport, 0, len(files))}
	for _, f := range files {
		response.Reports = append(response.Reports, reportFor(f.Name, f.Data))
	}

	c.JSON(http.StatusOK, response)
}

func reportFor(name string, data []byte) models.ImageReport {
	report, err := imaging.Analyze(data)
	if err != nil {
		return models.ImageReport{
			Filename:        name,
			Size:            int64(len(data)),
			Recommendations: []string{},
			Error:           err.Error(),
		}
	}
	return models.ImageReport{
		Filename:        name,
		Width:           report.Width,
		Height:          report.Height,
		Size:            report.Size,
		Score:           report.Score,
		IsOptimal:       report.IsOptimal,
		Recommendations: report.Recommendations,
	}
}
