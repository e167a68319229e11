package store

import (
	"context"
	"sync"

	"joyex-backend/internal/models"
)

// MemoryStore keeps history in process memory. It is lost on restart and is
// meant for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	limit  int
	byUser map[string][]*models.Job
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		limit:  normalizeLimit(limit),
		byUser: make(map[string][]*models.Job),
	}
}

func (s *MemoryStore) Save(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	saved, err := Stamp(job)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := append([]*models.Job{saved}, s.byUser[saved.UserID]...)
	if len(jobs) > s.limit {
		jobs = jobs[:s.limit]
	}
	s.byUser[saved.UserID] = jobs

	return saved.Clone(), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := s.byUser[userID]
	out := make([]models.Job, len(jobs))
	for i, j := range jobs {
		out[i] = *j.Clone()
	}
	return out, nil
}

func (s *MemoryStore) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.byUser[userID] {
		if j.ID == id {
			return j.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.byUser[userID]
	for i, j := range jobs {
		if j.ID == id {
			s.byUser[userID] = append(jobs[:i:i], jobs[i+1:]...)
			return nil
		}
	}
	return nil
}
