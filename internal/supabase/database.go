package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"joyex-backend/internal/models"
	"joyex-backend/internal/store"
)

// DatabaseClient is the Postgres-backed job store used in production.
type DatabaseClient struct {
	db    *sql.DB
	limit int
}

func NewDatabaseClient(connectionString string, historyLimit int) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewDatabaseClientFromDB(db, historyLimit), nil
}

// NewDatabaseClientFromDB wraps an already opened handle.
func NewDatabaseClientFromDB(db *sql.DB, historyLimit int) *DatabaseClient {
	if historyLimit <= 0 {
		historyLimit = store.DefaultHistoryLimit
	}
	return &DatabaseClient{db: db, limit: historyLimit}
}

// Save inserts the job and trims the owner's history in one transaction.
// The advisory lock serializes concurrent saves for the same user.
func (d *DatabaseClient) Save(ctx context.Context, job *models.Job) (*models.Job, error) {
	saved, err := store.Stamp(job)
	if err != nil {
		return nil, err
	}

	metaJSON, err := json.Marshal(saved.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, saved.UserID); err != nil {
		return nil, fmt.Errorf("failed to lock user history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, mode, prompt, images, output_url, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, saved.ID, saved.UserID, string(saved.Mode), saved.Prompt, pq.Array(saved.Images),
		nullString(saved.OutputURL), metaJSON, saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		)
	`, saved.UserID, d.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to trim job history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job: %w", err)
	}

	return saved, nil
}

func (d *DatabaseClient) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, mode, prompt, images, output_url, meta, created_at
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

func (d *DatabaseClient) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Job, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, user_id, mode, prompt, images, output_url, meta, created_at
		FROM jobs
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return job, err
}

func (d *DatabaseClient) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*models.Job, error) {
	var (
		job       models.Job
		mode      string
		images    pq.StringArray
		outputURL sql.NullString
		meta      []byte
	)
	err := row.Scan(&job.ID, &job.UserID, &mode, &job.Prompt, &images, &outputURL, &meta, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.Mode = models.JobMode(mode)
	job.Images = []string(images)
	job.OutputURL = outputURL.String
	job.CreatedAt = job.CreatedAt.UTC()
	if len(meta) > 0 {
		if err := models.DecodeJSON(meta, &job.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode job meta: %w", err)
		}
	}

	return &job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
