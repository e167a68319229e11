package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"joyex-backend/internal/config"
	"joyex-backend/internal/handlers"
	"joyex-backend/internal/middleware"
)

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	cfg := a.Config

	router := gin.New()
	router.Use(middleware.Recovery(a.Logger))
	router.Use(middleware.RequestLogger(a.Logger.Named("http")))
	router.Use(middleware.CORS(cfg.CORSAllowOrigins))
	router.Use(middleware.Metrics(a.Metrics))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
	router.GET("/health", handlers.HealthHandler(a.Generator.Mode()))

	if cfg.UploadBackend == config.UploadBackendLocal {
		router.StaticFS(cfg.UploadPublicPath, http.Dir(cfg.UploadDir))
	}

	jobsHandler := handlers.NewJobsHandler(a.Jobs)
	uploadHandler := handlers.NewUploadHandler(a.Uploads, a.Metrics, a.Logger.Named("upload"))
	qualityHandler := handlers.NewQualityHandler(a.Quality)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Jobs
	api.POST("/jobs", jobsHandler.SubmitJob)
	api.GET("/jobs", jobsHandler.ListJobs)
	api.GET("/jobs/:job_id", jobsHandler.GetJob)
	api.DELETE("/jobs/:job_id", jobsHandler.DeleteJob)

	// Uploads and image analysis
	api.POST("/upload", uploadHandler.UploadImages)
	api.POST("/images/analyze", handlers.AnalyzeImages)

	// Presets and quality
	api.GET("/presets", handlers.ListPresets)
	api.GET("/quality/stats", qualityHandler.GetQualityReport)
	api.DELETE("/quality/stats", qualityHandler.ClearQualityMetrics)

	return router
}
