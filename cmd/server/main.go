package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stwalsh4118/taxappeal/internal/config"
	"github.com/stwalsh4118/taxappeal/internal/database"
	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/extract"
	"github.com/stwalsh4118/taxappeal/internal/handlers"
	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/observability"
	"github.com/stwalsh4118/taxappeal/internal/repository"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting tax appeal API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Load the study tables once; they are shared read-only by every request
	bundle, err := dataset.Load(cfg.Data.Dir, cfg.Data.StudyYears, log.WithComponent("dataset"))
	if err != nil {
		log.Fatal("Failed to load study data", err, map[string]interface{}{
			"data_dir": cfg.Data.Dir,
		})
	}
	metrics.StudyYears.Set(float64(len(bundle.Years())))
	metrics.Areas.Set(float64(len(bundle.Areas())))
	log.Info("Study data loaded", map[string]interface{}{
		"data_dir":    cfg.Data.Dir,
		"study_years": bundle.Years(),
		"areas":       len(bundle.Areas()),
	})

	// The draft archive is optional
	ctx := context.Background()
	var (
		pinger handlers.Pinger
		drafts repository.DraftRepository
	)
	if cfg.Drafts.Enabled {
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare draft schema", err, nil)
		}

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		pinger = db
		drafts = repository.NewDraftRepository(db)
	} else {
		log.Info("Petition draft archive disabled", nil)
	}

	// Initialize extraction, services and handlers
	extractor := extract.NewExtractor(
		extract.FitzRasterizer{},
		extract.TesseractRecognizer{Language: cfg.OCR.Language},
		extract.Options{DPI: cfg.OCR.DPI, MaxPages: cfg.OCR.MaxPages},
		log.WithComponent("extract"),
	)
	appealService := services.NewAppealService(evidence.NewAggregator(bundle), drafts, clock, metrics, log.WithComponent("appeals"))
	recordService := services.NewRecordService(extractor, bundle, clock, metrics, log.WithComponent("records"))

	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", err, nil)
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         log,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		Health:         handlers.NewHealthHandler(pinger, bundle, clock, cfg.Server.Env),
		Areas:          handlers.NewAreaHandler(appealService),
		Records:        handlers.NewRecordHandler(recordService),
		Appeals:        handlers.NewAppealHandler(appealService),
		CORSOrigins:    cfg.CORS.Origins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
