package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/middleware"
	"github.com/stwalsh4118/taxappeal/internal/observability"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger         *logger.Logger
	Metrics        *observability.Metrics
	MetricsHandler http.Handler // served at /metrics when set
	Health         *HealthHandler
	Areas          *AreaHandler
	Records        *RecordHandler
	Appeals        *AppealHandler
	CORSOrigins    []string
	MaxUploadBytes int64
}

// NewRouter builds the gin engine with the middleware stack and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Middleware order: RequestID -> Logger -> Recovery -> CORS -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Recovery(cfg.Logger))
	// No origins means no cross-origin callers; cors.New rejects an empty list.
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}

	router.GET("/health", cfg.Health.Health)
	router.GET("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", cfg.Health.Info)

		areas := v1.Group("/areas")
		{
			areas.GET("", cfg.Areas.List)
			areas.GET("/:code/evidence", cfg.Areas.Evidence)
			areas.GET("/:code/appeals", cfg.Areas.Appeals)
		}

		records := v1.Group("/record-cards")
		{
			records.POST("", middleware.BodyLimit(cfg.MaxUploadBytes), cfg.Records.Upload)
			records.POST("/manual", cfg.Records.Manual)
		}

		appeals := v1.Group("/appeals")
		{
			appeals.POST("", cfg.Appeals.Analyze)
			appeals.GET("/:id", cfg.Appeals.Get)
			appeals.GET("/:id/petition", cfg.Appeals.Petition)
		}
	}

	return router
}
