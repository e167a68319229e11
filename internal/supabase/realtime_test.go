package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/config"
	"joyex-backend/internal/models"
	"joyex-backend/internal/supabase"
)

type capturedRequest struct {
	method string
	path   string
	auth   string
	prefer string
	row    map[string]interface{}
}

func newRealtime(t *testing.T, status int, body string) (*supabase.RealtimeClient, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.prefer = r.Header.Get("Prefer")
		_ = json.NewDecoder(r.Body).Decode(&captured.row)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := supabase.NewClient(&config.Config{
		SupabaseURL:            server.URL,
		SupabasePublishableKey: "anon-key",
		SupabaseServiceRoleKey: "service-key",
	})
	require.NoError(t, err)
	return supabase.NewRealtimeClient(client.Supabase), captured
}

func TestPublishJobEvent_InsertsRow(t *testing.T) {
	realtime, captured := newRealtime(t, http.StatusCreated, "")

	job := &models.Job{
		ID:        "job-1",
		UserID:    "u1",
		Mode:      models.ModeEdit,
		Images:    []string{"https://x/a.png"},
		OutputURL: "https://out/1.png",
	}
	require.NoError(t, realtime.PublishJobEvent(context.Background(), models.EventJobCompleted, job))

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/rest/v1/job_events", captured.path)
	assert.Equal(t, "Bearer service-key", captured.auth)
	assert.Contains(t, captured.prefer, "return=minimal")

	assert.Equal(t, "u1", captured.row["user_id"])
	assert.Equal(t, "job-1", captured.row["job_id"])
	assert.Equal(t, models.EventJobCompleted, captured.row["event"])
	payload, ok := captured.row["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "completed", payload["status"])
	assert.Equal(t, "https://out/1.png", payload["output_url"])
	assert.EqualValues(t, 1, payload["image_count"])
}

func TestPublishJobEvent_DeletedPayload(t *testing.T) {
	realtime, captured := newRealtime(t, http.StatusCreated, "")

	job := &models.Job{ID: "job-2", UserID: "u1"}
	require.NoError(t, realtime.PublishJobEvent(context.Background(), models.EventJobDeleted, job))

	assert.Equal(t, models.EventJobDeleted, captured.row["event"])
	assert.Equal(t, map[string]interface{}{"job_id": "job-2"}, captured.row["payload"])
}

func TestPublishJobEvent_ReturnsRejection(t *testing.T) {
	realtime, _ := newRealtime(t, http.StatusUnauthorized,
		`{"code":"42501","message":"new row violates row-level security policy for table \"job_events\""}`)

	err := realtime.PublishJobEvent(context.Background(), models.EventJobCompleted, &models.Job{ID: "job-3", UserID: "u1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row-level security")
}

func TestPublishJobEvent_HonoursCancelledContext(t *testing.T) {
	realtime, captured := newRealtime(t, http.StatusCreated, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := realtime.PublishJobEvent(ctx, models.EventJobCompleted, &models.Job{ID: "job-4", UserID: "u1"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured.method)
}
