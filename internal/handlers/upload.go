package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/metrics"
	"joyex-backend/internal/models"
	"joyex-backend/internal/upload"
)

// multipartOverhead covers boundaries and form fields on top of file bytes.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	service *upload.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewUploadHandler(service *upload.Service, m *metrics.Metrics, log *zap.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		metrics: m,
		logger:  logger.OrNop(log),
	}
}

// UploadImages godoc
// @Summary     Upload reference images
// @Description Accepts one or more image files under any multipart field names and returns their public URLs in upload order.
// @Description Set `optimize=true` to resize, contrast-adjust and sharpen each image before it is stored.
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file     formData file   true  "Image file (repeatable)"
// @Param       optimize formData bool   false "Run the image preprocessor"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /upload [post]
func (h *UploadHandler) UploadImages(c *gin.Context) {
	limit := h.service.MaxFileSize()*int64(h.service.MaxFiles()) + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		h.metrics.RecordUpload("rejected", 0)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "invalid multipart form: " + err.Error(),
		})
		return
	}

	files, fields, total, err := readParts(reader, h.service.MaxFileSize())
	if err != nil {
		h.metrics.RecordUpload("rejected", 0)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	optimize, _ := strconv.ParseBool(fields["optimize"])

	urls, err := h.service.Store(c.Request.Context(), files, upload.Options{Optimize: optimize})
	if errors.Is(err, upload.ErrInvalidUpload) {
		h.metrics.RecordUpload("rejected", 0)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("upload failed", zap.Int("files", len(files)), zap.Error(err))
		h.metrics.RecordUpload("error", 0)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload files"})
		return
	}

	h.metrics.RecordUpload("success", total)
	c.JSON(http.StatusOK, models.UploadResponse{
		Success: true,
		URLs:    urls,
	})
}

// readParts streams the form in order, so URLs come back in the order the
// files were sent regardless of field names. Each file is read up to one byte
// past maxFileSize so the service can still reject it as oversized.
func readParts(reader *multipart.Reader, maxFileSize int64) ([]upload.File, map[string]string, int64, error) {
	var (
		files  []upload.File
		fields = map[string]string{}
		total  int64
	)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("invalid multipart form: %w", err)
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, 1024))
			part.Close()
			if err != nil {
				return nil, nil, 0, fmt.Errorf("failed to read field %s: %w", part.FormName(), err)
			}
			fields[part.FormName()] = string(value)
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxFileSize+1))
		part.Close()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to read %s: %w", part.FileName(), err)
		}
		files = append(files, upload.File{Name: part.FileName(), Data: data})
		total += int64(len(data))
	}
	return files, fields, total, nil
}
