package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/models"
	"joyex-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co/", "anon-key", "uploads")
	require.NoError(t, err)

	url := client.GetPublicURL("2025/01/1700000000000_abc.png")
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/uploads/2025/01/1700000000000_abc.png", url)
}

func TestNewStorageClient_RequiresBucket(t *testing.T) {
	_, err := supabase.NewStorageClient("https://project.supabase.co", "anon-key", "")
	assert.Error(t, err)
}

func TestJobCompletedPayload(t *testing.T) {
	payload := supabase.JobCompletedPayload(&models.Job{
		ID:        "job-1",
		Mode:      models.ModeEdit,
		Images:    []string{"a", "b"},
		OutputURL: "https://out/1.png",
	})

	assert.Equal(t, "job-1", payload["job_id"])
	assert.Equal(t, "completed", payload["status"])
	assert.Equal(t, 2, payload["image_count"])
	assert.Equal(t, "https://out/1.png", payload["output_url"])
}
