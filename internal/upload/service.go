// Package upload stores user-supplied reference images and hands back the
// URLs they can be fetched from.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"joyex-backend/internal/imaging"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/quality"
)

const (
	DefaultMaxFileSize = 8 << 20
	DefaultMaxFiles    = 10
	defaultExtension   = "jpg"
)

// ErrInvalidUpload marks a rejection caused by the client's files.
var ErrInvalidUpload = errors.New("invalid upload")

type File struct {
	Name string
	Data []byte
}

type Options struct {
	// Optimize runs each file through the image preprocessor unless it is
	// already an acceptable PNG.
	Optimize bool
}

type Service struct {
	backend     Backend
	maxFileSize int64
	maxFiles    int
	optimize    imaging.Options
	quality     *quality.Monitor
	logger      *zap.Logger
	now         func() time.Time
}

// NewService builds an upload service. monitor may be nil; when set, every
// optimization run is recorded in it.
func NewService(backend Backend, maxFileSize int64, maxFiles int, monitor *quality.Monitor, log *zap.Logger) *Service {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Service{
		backend:     backend,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
		optimize:    imaging.DefaultOptions(),
		quality:     monitor,
		logger:      logger.OrNop(log),
		now:         time.Now,
	}
}

func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Service) MaxFiles() int {
	return s.maxFiles
}

// Store validates every file before writing any of them, then writes each one
// as {unixMillis}_{randomId}.{ext}. URLs come back in input order.
func (s *Service) Store(ctx context.Context, files []File, opts Options) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", ErrInvalidUpload)
	}
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: at most %d files per upload", ErrInvalidUpload, s.maxFiles)
	}

	contentTypes := make([]string, len(files))
	for i, f := range files {
		if int64(len(f.Data)) > s.maxFileSize {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidUpload, f.Name, s.maxFileSize)
		}
		mime := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mime.String(), "image/") {
			return nil, fmt.Errorf("%w: %s is not an image", ErrInvalidUpload, f.Name)
		}
		contentTypes[i] = mime.String()
	}

	urls := make([]string, 0, len(files))
	for i, f := range files {
		data, contentType, ext := f.Data, contentTypes[i], extension(f.Name)

		if opts.Optimize && !imaging.ShouldBypass(contentType, int64(len(data))) {
			started := time.Now()
			result, err := imaging.Optimize(data, s.optimize)
			s.recordOptimization(len(data), result, time.Since(started))
			if err != nil {
				s.logger.Warn("image optimization failed, storing original",
					zap.String("filename", f.Name), zap.Error(err))
			} else {
				data, contentType = result.Data, result.ContentType
				ext = extensionFor(contentType)
			}
		}

		url, err := s.backend.Put(ctx, s.objectName(ext), contentType, data)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", f.Name, err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func (s *Service) recordOptimization(originalSize int, result *imaging.Result, elapsed time.Duration) {
	if s.quality == nil {
		return
	}
	m := quality.Metrics{
		ProcessingTime: elapsed,
		InputImageSize: int64(originalSize),
		Success:        result != nil,
	}
	if result != nil {
		m.OutputImageSize = int64(result.OptimizedSize)
		m.CompressionRatio = float64(result.CompressionRatio)
	}
	m.QualityScore = quality.CalculateScore(m.InputImageSize, m.OutputImageSize, elapsed, m.Success)
	s.quality.Record(m)
}

func (s *Service) objectName(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	return fmt.Sprintf("%d_%s.%s", s.now().UnixMilli(), id, ext)
}

func extension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return defaultExtension
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExtension
		}
	}
	return ext
}

func extensionFor(contentType string) string {
	if contentType == "image/png" {
		return "png"
	}
	return defaultExtension
}
