package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/models"
	"joyex-backend/internal/store"
)

type storeFactory func(t *testing.T, limit int) store.JobStore

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, limit int) store.JobStore {
			return store.NewMemoryStore(limit)
		},
		"sqlite": func(t *testing.T, limit int) store.JobStore {
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "jobs.db"), limit)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"redis": func(t *testing.T, limit int) store.JobStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return store.NewRedisStore(client, limit)
		},
	}
}

func newJob(userID, prompt string) *models.Job {
	return &models.Job{
		UserID:    userID,
		Mode:      models.ModeEdit,
		Prompt:    prompt,
		Images:    []string{"https://x/a.png", "https://x/b.png"},
		OutputURL: "https://out/1.png",
		Meta: map[string]interface{}{
			"final_prompt": "expanded " + prompt,
			"parameters": map[string]interface{}{
				"seed":     int64(9007199254740993),
				"strength": 0.12,
			},
		},
	}
}

func TestJobStore_SaveAndListRoundTrip(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t, 50)
			ctx := context.Background()

			input := newJob("u1", "make it snow")
			saved, err := s.Save(ctx, input)
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
			assert.False(t, saved.CreatedAt.IsZero())

			jobs, err := s.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, jobs, 1)

			got := jobs[0]
			assert.Equal(t, saved.ID, got.ID)
			assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
			assert.Equal(t, input.UserID, got.UserID)
			assert.Equal(t, input.Mode, got.Mode)
			assert.Equal(t, input.Prompt, got.Prompt)
			assert.Equal(t, input.Images, got.Images)
			assert.Equal(t, input.OutputURL, got.OutputURL)
			assert.Equal(t, saved.Meta, got.Meta)
			params, ok := got.Meta["parameters"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, json.Number("9007199254740993"), params["seed"])
			assert.Equal(t, json.Number("0.12"), params["strength"])
			assert.Equal(t, "expanded make it snow", got.Meta["final_prompt"])
		})
	}
}

func TestJobStore_ListIsNewestFirstAndUserScoped(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t, 50)
			ctx := context.Background()

			_, err := s.Save(ctx, newJob("u1", "first"))
			require.NoError(t, err)
			_, err = s.Save(ctx, newJob("u2", "other user"))
			require.NoError(t, err)
			_, err = s.Save(ctx, newJob("u1", "second"))
			require.NoError(t, err)

			jobs, err := s.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, jobs, 2)
			assert.Equal(t, "second", jobs[0].Prompt)
			assert.Equal(t, "first", jobs[1].Prompt)

			none, err := s.ListByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestJobStore_HistoryIsCapped(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t, 3)
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				_, err := s.Save(ctx, newJob("u1", fmt.Sprintf("job-%d", i)))
				require.NoError(t, err)
			}

			jobs, err := s.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, jobs, 3)
			assert.Equal(t, "job-4", jobs[0].Prompt)
			assert.Equal(t, "job-2", jobs[2].Prompt)
		})
	}
}

func TestJobStore_ConcurrentSavesLoseNothing(t *testing.T) {
	const writers = 20

	for name, factory := range factories() {
		for _, limit := range []int{5, 50} {
			t.Run(fmt.Sprintf("%s/limit-%d", name, limit), func(t *testing.T) {
				s := factory(t, limit)
				ctx := context.Background()

				var wg sync.WaitGroup
				errs := make(chan error, writers)
				for i := 0; i < writers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						_, err := s.Save(ctx, newJob("u1", fmt.Sprintf("job-%d", i)))
						errs <- err
					}(i)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					require.NoError(t, err)
				}

				jobs, err := s.ListByUser(ctx, "u1")
				require.NoError(t, err)
				assert.Len(t, jobs, min(writers, limit))

				seen := make(map[string]bool, len(jobs))
				for _, j := range jobs {
					assert.False(t, seen[j.ID], "duplicate job %s", j.ID)
					seen[j.ID] = true
				}
			})
		}
	}
}

func TestRedisStore_ConcurrentSaveAndDelete(t *testing.T) {
	s := factories()["redis"](t, 50)
	ctx := context.Background()

	var doomed []string
	for i := 0; i < 10; i++ {
		saved, err := s.Save(ctx, newJob("u1", fmt.Sprintf("old-%d", i)))
		require.NoError(t, err)
		doomed = append(doomed, saved.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(ctx, newJob("u1", fmt.Sprintf("new-%d", i)))
			assert.NoError(t, err)
		}(i)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, s.DeleteByIDAndUser(ctx, id, "u1"))
		}(doomed[i])
	}
	wg.Wait()

	jobs, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, jobs, 10)
	for _, j := range jobs {
		assert.Contains(t, j.Prompt, "new-")
	}
}

func TestJobStore_DeleteIsOwnerScoped(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t, 50)
			ctx := context.Background()

			saved, err := s.Save(ctx, newJob("u1", "keep me"))
			require.NoError(t, err)

			// Wrong owner: nothing happens.
			require.NoError(t, s.DeleteByIDAndUser(ctx, saved.ID, "u2"))
			_, err = s.GetByIDAndUser(ctx, saved.ID, "u1")
			require.NoError(t, err)

			// Unknown id: no-op.
			require.NoError(t, s.DeleteByIDAndUser(ctx, "missing", "u1"))

			require.NoError(t, s.DeleteByIDAndUser(ctx, saved.ID, "u1"))
			_, err = s.GetByIDAndUser(ctx, saved.ID, "u1")
			assert.ErrorIs(t, err, store.ErrNotFound)

			jobs, err := s.ListByUser(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, jobs)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := store.NewMemoryStore(0)
	ctx := context.Background()

	saved, err := s.Save(ctx, newJob("u1", "immutable"))
	require.NoError(t, err)
	saved.Images[0] = "mutated"

	jobs, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://x/a.png", jobs[0].Images[0])

	saved.Meta["parameters"].(map[string]interface{})["seed"] = "mutated"
	jobs, err = s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), jobs[0].Meta["parameters"].(map[string]interface{})["seed"])
}
