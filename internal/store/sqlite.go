package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"joyex-backend/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    prompt TEXT NOT NULL,
    images_json TEXT NOT NULL,
    output_url TEXT,
    meta_json TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_user_created ON jobs(user_id, created_at DESC);
`

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

func NewSQLiteStore(dbPath string, limit int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps insert+trim transactions serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, limit: normalizeLimit(limit)}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, job *models.Job) (*models.Job, error) {
	saved, err := Stamp(job)
	if err != nil {
		return nil, err
	}

	imagesJSON, err := json.Marshal(saved.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	metaJSON, err := json.Marshal(saved.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO jobs (id, user_id, mode, prompt, images_json, output_url, meta_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, string(saved.Mode), saved.Prompt, string(imagesJSON),
		nullString(saved.OutputURL), string(metaJSON), saved.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM jobs WHERE user_id = ? AND id NOT IN (
		     SELECT id FROM jobs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
		 )`,
		saved.UserID, saved.UserID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job: %w", err)
	}
	return saved, nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, mode, prompt, images_json, output_url, meta_json, created_at
		 FROM jobs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStore) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, mode, prompt, images_json, output_url, meta_json, created_at
		 FROM jobs WHERE id = ? AND user_id = ?`, id, userID)
	job, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (s *SQLiteStore) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row rowScanner) (*models.Job, error) {
	var (
		job        models.Job
		mode       string
		imagesJSON string
		outputURL  sql.NullString
		metaJSON   sql.NullString
		createdAt  int64
	)
	if err := row.Scan(&job.ID, &job.UserID, &mode, &job.Prompt, &imagesJSON, &outputURL, &metaJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	job.Mode = models.JobMode(mode)
	job.OutputURL = outputURL.String
	job.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := json.Unmarshal([]byte(imagesJSON), &job.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
		if err := models.DecodeJSON([]byte(metaJSON.String), &job.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode meta: %w", err)
		}
	}
	return &job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
