package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"joyex-backend/internal/jobs"
	"joyex-backend/internal/middleware"
	"joyex-backend/internal/models"
	"joyex-backend/internal/store"
)

type JobsHandler struct {
	service *jobs.Service
}

func NewJobsHandler(service *jobs.Service) *JobsHandler {
	return &JobsHandler{service: service}
}

// SubmitJob godoc
// @Summary     Submit an edit or replace job
// @Description Validates the request, expands the prompt, runs image generation and records the job in the caller's history.
// @Description
// @Description **Modes:**
// @Description - `edit`: applies the prompt consistently to every image in `image_urls`
// @Description - `replace`: puts the product from `product_images` into the scene from `competitor_images` (or the first/remaining entries of `image_urls`)
// @Description
// @Description The body always has the `{success, data?, error?}` shape. Validation failures return 400, generation failures 502.
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SubmitJobRequest true "Job request"
// @Success     200 {object} models.JobResult
// @Failure     400 {object} models.JobResult
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.JobResult
// @Failure     502 {object} models.JobResult
// @Router      /jobs [post]
func (h *JobsHandler) SubmitJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.JobResult{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	result := h.service.Submit(c.Request.Context(), jobs.Input{
		Mode:             req.Mode,
		Prompt:           req.Prompt,
		ImageURLs:        req.ImageURLs,
		CompetitorImages: req.CompetitorImages,
		ProductImages:    req.ProductImages,
		UserID:           userID,
		Size:             req.Size,
		Seed:             req.Seed,
		Strength:         req.Strength,
		Guidance:         req.Guidance,
		AddonPrompt:      req.AddonPrompt,
		AccuracyPreset:   req.AccuracyPreset,
	})

	c.JSON(statusForFailure(result.Failure), result.JobResult)
}

// ListJobs godoc
// @Summary     List job history
// @Description Returns the authenticated user's most recent jobs, newest first
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.JobListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /jobs [get]
func (h *JobsHandler) ListJobs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	history := h.service.History(c.Request.Context(), userID)
	response := models.JobListResponse{Jobs: make([]models.JobResponse, 0, len(history))}
	for i := range history {
		response.Jobs = append(response.Jobs, models.ToJobResponse(&history[i]))
	}

	c.JSON(http.StatusOK, response)
}

// GetJob godoc
// @Summary     Get job details
// @Description Returns one job from the authenticated user's history
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       job_id path string true "Job ID"
// @Success     200 {object} models.JobResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /jobs/{job_id} [get]
func (h *JobsHandler) GetJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	job, err := h.service.Get(c.Request.Context(), c.Param("job_id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get job",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ToJobResponse(job))
}

// DeleteJob godoc
// @Summary     Delete a job
// @Description Removes a job from the authenticated user's history. Unknown ids are ignored.
// @Tags        jobs
// @Security    Bearer
// @Param       job_id path string true "Job ID"
// @Success     204
// @Failure     401 {object} models.ErrorResponse
// @Router      /jobs/{job_id} [delete]
func (h *JobsHandler) DeleteJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	h.service.Delete(c.Request.Context(), c.Param("job_id"), userID)
	c.Status(http.StatusNoContent)
}

func statusForFailure(f jobs.Failure) int {
	switch f {
	case jobs.FailureNone:
		return http.StatusOK
	case jobs.FailureValidation:
		return http.StatusBadRequest
	case jobs.FailureUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
