package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"joyex-backend/internal/models"
)

// RedisStore keeps each user's history as a capped Redis list of JSON jobs,
// newest at the head.
type RedisStore struct {
	client redis.UniversalClient
	limit  int
	prefix string
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client redis.UniversalClient, limit int) *RedisStore {
	return &RedisStore{
		client: client,
		limit:  normalizeLimit(limit),
		prefix: "joyex:jobs:",
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Save(ctx context.Context, job *models.Job) (*models.Job, error) {
	saved, err := Stamp(job)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	key := s.key(saved.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(s.limit-1))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return saved, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs := make([]models.Job, 0, len(raw))
	for _, item := range raw {
		var job models.Job
		if err := models.DecodeJSON([]byte(item), &job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *RedisStore) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Job, error) {
	jobs, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, ErrNotFound
}

// DeleteByIDAndUser removes the matching entry by value. LREM only drops
// that exact entry, so concurrent saves and trims on the list are unaffected.
func (s *RedisStore) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	key := s.key(userID)

	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	for _, item := range raw {
		var job models.Job
		if models.DecodeJSON([]byte(item), &job) != nil || job.ID != id {
			continue
		}
		if err := s.client.LRem(ctx, key, 1, item).Err(); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return nil
	}
	return nil
}
