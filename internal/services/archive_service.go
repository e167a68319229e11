package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/upload"
)

const maxArchiveSize = 50 << 20

// ArchiveService copies generated images out of the provider's short-lived
// CDN into our own upload backend.
type ArchiveService struct {
	backend    upload.Backend
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	now        func() time.Time
}

// baseURL turns server-relative URLs from the local backend into absolute ones.
func NewArchiveService(backend upload.Backend, httpClient *http.Client, baseURL string, log *zap.Logger) *ArchiveService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ArchiveService{
		backend:    backend,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger.OrNop(log),
		now:        time.Now,
	}
}

// Archive downloads each URL and stores it as results/{userID}/{date}/{id}.{ext}.
// It stops at the first failure so callers never get a partial mapping.
func (s *ArchiveService) Archive(ctx context.Context, userID string, urls []string) ([]string, error) {
	archived := make([]string, 0, len(urls))
	for _, src := range urls {
		data, err := s.download(ctx, src)
		if err != nil {
			return nil, err
		}

		mime := mimetype.Detect(data)
		key := path.Join("results", userID, s.now().UTC().Format("20060102"),
			uuid.NewString()+mime.Extension())

		storedURL, err := s.backend.Put(ctx, key, mime.String(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to store archived image: %w", err)
		}

		if strings.HasPrefix(storedURL, "/") {
			storedURL = s.baseURL + storedURL
		}

		s.logger.Debug("archived result image", zap.String("source", src), zap.String("url", storedURL))
		archived = append(archived, storedURL)
	}
	return archived, nil
}

func (s *ArchiveService) download(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download result: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read result body: %w", err)
	}
	if len(data) > maxArchiveSize {
		return nil, fmt.Errorf("result image exceeds %d bytes", maxArchiveSize)
	}
	return data, nil
}
