package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"joyex-backend/internal/models"
)

const jobEventsTable = "job_events"

// RealtimeClient publishes job events by inserting rows into job_events.
// Supabase Realtime broadcasts those inserts to subscribed browsers.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

type jobEventRow struct {
	UserID    string                 `json:"user_id"`
	JobID     string                 `json:"job_id"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

func (r *RealtimeClient) PublishJobEvent(ctx context.Context, event string, job *models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var payload map[string]interface{}
	switch event {
	case models.EventJobCompleted:
		payload = JobCompletedPayload(job)
	default:
		payload = map[string]interface{}{"job_id": job.ID}
	}

	row := jobEventRow{
		UserID:    job.UserID,
		JobID:     job.ID,
		Event:     event,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	_, _, err := r.client.From(jobEventsTable).Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	return nil
}

func JobCompletedPayload(job *models.Job) map[string]interface{} {
	return map[string]interface{}{
		"job_id":      job.ID,
		"mode":        string(job.Mode),
		"status":      "completed",
		"output_url":  job.OutputURL,
		"image_count": len(job.Images),
	}
}
