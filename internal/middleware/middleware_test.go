package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/config"
	"joyex-backend/internal/metrics"
	"joyex-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(&config.Config{SupabaseJWTSecret: testSecret}))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(t *testing.T) string { return "" }},
		{"wrong scheme", func(t *testing.T) string { return "Basic abc" }},
		{"empty token", func(t *testing.T) string { return "Bearer " }},
		{"garbage token", func(t *testing.T) string { return "Bearer invalid-token" }},
		{"wrong secret", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.MapClaims{"sub": "user-123"}, "another-secret")
		}},
		{"expired", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.MapClaims{
				"sub": "user-123",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}, testSecret)
		}},
		{"missing subject", func(t *testing.T) string {
			return "Bearer " + signToken(t, jwt.MapClaims{"role": "authenticated"}, testSecret)
		}},
		{"wrong algorithm", func(t *testing.T) string {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-123"})
			signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return "Bearer " + signed
		}},
	}

	router := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/test", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-123"}`, w.Body.String())
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New("test", prometheus.NewRegistry())

	router := gin.New()
	router.Use(middleware.Metrics(m))
	router.GET("/jobs/:job_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		req, _ := http.NewRequest("GET", "/jobs/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/jobs/:job_id", "2xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORS([]string{"https://app.joyex.example"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "https://app.joyex.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.joyex.example", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(nil), middleware.Recovery(nil))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	req, _ := http.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
