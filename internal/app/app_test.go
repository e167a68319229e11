package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/app"
	"joyex-backend/internal/config"
	"joyex-backend/internal/models"
)

const testSecret = "test-secret"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		FALDemoMode:       true,
		FALTimeout:        5 * time.Second,
		AccuracyPreset:    "standard",
		SupabaseJWTSecret: testSecret,
		JobStore:          config.JobStoreSQLite,
		SQLitePath:        filepath.Join(dir, "jobs.db"),
		HistoryLimit:      50,
		UploadBackend:     config.UploadBackendLocal,
		UploadDir:         filepath.Join(dir, "uploads"),
		UploadPublicPath:  "/uploads",
		UploadMaxFileSize: 1 << 20,
		UploadMaxFiles:    5,
		Environment:       "test",
		BaseURL:           "http://localhost:8080",
		CORSAllowOrigins:  []string{"*"},
	}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := app.New(context.Background(), testConfig(t), nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_RejectsUnknownBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.UploadBackend = "ftp"

	_, err := app.New(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown upload backend")

	cfg = testConfig(t)
	cfg.JobStore = "cassandra"
	_, err = app.New(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job store")
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newApp(t).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generation_mode":"demo"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "joyex_http_requests_total")
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	router := newApp(t).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SubmitAndListJobs(t *testing.T) {
	router := newApp(t).Router()
	auth := bearer(t, "user-1")

	body, _ := json.Marshal(map[string]any{
		"mode":              "replace",
		"prompt":            "swap the bottle",
		"competitor_images": []string{"/uploads/scene.png"},
		"product_images":    []string{"https://cdn.example.com/bottle.png"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.JobResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.True(t, result.Success)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("Authorization", auth)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var list models.JobListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, result.Data.JobID, list.Jobs[0].ID)
	assert.Equal(t, []string{
		"http://localhost:8080/uploads/scene.png",
		"https://cdn.example.com/bottle.png",
	}, list.Jobs[0].Images)

	// Other users never see it.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("Authorization", bearer(t, "user-2"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jobs":[]}`, w.Body.String())
}
