// Package store persists job history. Every implementation keeps at most a
// fixed number of jobs per user, newest first.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"joyex-backend/internal/models"
)

const DefaultHistoryLimit = 50

var ErrNotFound = errors.New("job not found")

type JobStore interface {
	// Save assigns ID and CreatedAt, stores the job and trims the owner's
	// history to the configured limit.
	Save(ctx context.Context, job *models.Job) (*models.Job, error)
	// ListByUser returns the user's jobs, most recent first.
	ListByUser(ctx context.Context, userID string) ([]models.Job, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Job, error)
	// DeleteByIDAndUser is a no-op when no such job exists.
	DeleteByIDAndUser(ctx context.Context, id, userID string) error
}

// Stamp returns a copy of job with a fresh ID and creation time. Meta is
// normalized so every store hands back the same values it was given.
func Stamp(job *models.Job) (*models.Job, error) {
	meta, err := models.NormalizeMeta(job.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job meta: %w", err)
	}
	out := job.Clone()
	out.Meta = meta
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now().UTC()
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
