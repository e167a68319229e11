package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"joyex-backend/internal/fal"
)

const (
	JobStoreMemory   = "memory"
	JobStoreSQLite   = "sqlite"
	JobStorePostgres = "postgres"
	JobStoreRedis    = "redis"

	UploadBackendLocal    = "local"
	UploadBackendSupabase = "supabase"
	UploadBackendS3       = "s3"
)

type Config struct {
	// FAL image generation
	FALKey         string
	FALEndpoint    string
	FALDemoMode    bool
	FALTimeout     time.Duration
	AccuracyPreset string
	AccuracyStrict bool

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	// SupabaseServiceRoleKey is used for server-side writes that row-level
	// security would refuse for the publishable key.
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Job history
	JobStore      string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	HistoryLimit  int

	// Uploads
	UploadBackend     string
	UploadDir         string
	UploadPublicPath  string
	UploadMaxFileSize int64
	UploadMaxFiles    int
	ArchiveResults    bool

	// S3-compatible storage
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3PublicBaseURL   string

	// Server
	Port             string
	Environment      string
	BaseURL          string
	LogLevel         string
	CORSAllowOrigins []string
}

func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	env := v.GetString("ENVIRONMENT")

	cfg := &Config{
		FALKey:         v.GetString("FAL_KEY"),
		FALEndpoint:    v.GetString("FAL_ENDPOINT"),
		FALDemoMode:    v.GetBool("FAL_DEMO_MODE"),
		FALTimeout:     v.GetDuration("FAL_TIMEOUT"),
		AccuracyPreset: v.GetString("ACCURACY_PRESET"),
		AccuracyStrict: v.GetBool("ACCURACY_STRICT"),

		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		JobStore:      strings.ToLower(v.GetString("JOB_STORE")),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		HistoryLimit:  v.GetInt("HISTORY_LIMIT"),

		UploadBackend:     strings.ToLower(v.GetString("UPLOAD_BACKEND")),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		UploadPublicPath:  v.GetString("UPLOAD_PUBLIC_PATH"),
		UploadMaxFileSize: v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
		UploadMaxFiles:    v.GetInt("UPLOAD_MAX_FILES"),
		ArchiveResults:    v.GetBool("ARCHIVE_RESULTS"),

		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3PublicBaseURL:   v.GetString("S3_PUBLIC_BASE_URL"),

		Port:             v.GetString("PORT"),
		Environment:      env,
		BaseURL:          v.GetString("BASE_URL"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
	}

	// Demo generation is opt-in everywhere except local development.
	if !v.IsSet("FAL_DEMO_MODE") {
		cfg.FALDemoMode = env == "development" && !fal.HasCredential(cfg.FALKey)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("FAL_ENDPOINT", "https://fal.run/fal-ai/bytedance/seedream/v4/edit")
	v.SetDefault("FAL_TIMEOUT", 120*time.Second)
	v.SetDefault("ACCURACY_PRESET", "standard")
	v.SetDefault("ACCURACY_STRICT", false)

	v.SetDefault("SUPABASE_STORAGE_BUCKET", "uploads")

	v.SetDefault("JOB_STORE", JobStoreMemory)
	v.SetDefault("SQLITE_PATH", "data/jobs.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HISTORY_LIMIT", 50)

	v.SetDefault("UPLOAD_BACKEND", UploadBackendLocal)
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/uploads")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 8<<20)
	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("ARCHIVE_RESULTS", false)

	v.SetDefault("S3_REGION", "auto")

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if !c.FALDemoMode && !fal.HasCredential(c.FALKey) {
		return fmt.Errorf("FAL_KEY is required unless FAL_DEMO_MODE is enabled")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}

	switch c.JobStore {
	case JobStoreMemory:
	case JobStoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite job store")
		}
	case JobStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres job store")
		}
	case JobStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis job store")
		}
	default:
		return fmt.Errorf("unknown JOB_STORE %q", c.JobStore)
	}

	switch c.UploadBackend {
	case UploadBackendLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the local upload backend")
		}
	case UploadBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServerKey() == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY or SUPABASE_PUBLISHABLE_KEY are required for the supabase upload backend")
		}
	case UploadBackendS3:
		if c.S3Bucket == "" || c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" {
			return fmt.Errorf("S3_BUCKET, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend)
	}

	return nil
}

// SupabaseServerKey is the key used for server-side Supabase calls: the
// service role key when set, the publishable key otherwise.
func (c *Config) SupabaseServerKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabasePublishableKey
}

// RealtimeEnabled reports whether job events can be written to job_events.
// The table only admits inserts from the service role.
func (c *Config) RealtimeEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
