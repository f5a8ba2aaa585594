package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carwiseiq/internal/adapters/primary/http/handlers"
	"carwiseiq/internal/adapters/primary/http/middleware"
	"carwiseiq/internal/adapters/secondary/artifactfs"
	"carwiseiq/internal/adapters/secondary/embedding"
	"carwiseiq/internal/adapters/secondary/postgres"
	"carwiseiq/internal/adapters/secondary/sqlite"
	"carwiseiq/internal/config"
	ports "carwiseiq/internal/core/ports/output"
	"carwiseiq/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Comparable reference store (read-only for this service)
	var comparableRepo ports.ComparableRepository
	switch cfg.Database.Driver {
	case "sqlite":
		repo, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("open sqlite comparable store: %v", err)
		}
		defer repo.Close()
		comparableRepo = repo
		log.WithField("path", cfg.Database.SQLitePath).Info("sqlite comparable store opened")
	case "postgres":
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
		if err != nil {
			log.Fatalf("parse db config: %v", err)
		}
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			log.Fatalf("create db pool: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping db: %v", err)
		}
		comparableRepo = postgres.NewComparableRepository(pool)
		log.Info("database connection established")
	default:
		log.Fatalf("unknown database driver %q", cfg.Database.Driver)
	}

	// Secondary Adapters (Output Ports)
	artifactStore := artifactfs.NewStore(cfg.Artifacts.Dir)
	backbone := embedding.NewClient(&cfg.Embedding)
	if cfg.Embedding.Enabled {
		log.WithField("url", cfg.Embedding.URL).Info("embedding backbone client initialized")
	} else {
		log.Info("embedding backbone disabled; image features degrade to fallback vectors")
	}

	// Core Services (Application Layer)
	registry := services.NewModelRegistry(artifactStore, cfg.Artifacts.Versions)
	encoder := services.NewFeatureEncoder()
	extractor := services.NewImageFeatureExtractor(backbone)
	predictionSvc := services.NewPredictionService(registry, encoder, extractor, cfg.Prediction)
	calibrator := services.NewMarketCalibrator(comparableRepo, cfg.Calibration)

	// Eager resolve so a broken artifact tree is visible at startup,
	// not on the first request.
	if artifact, err := registry.Resolve(context.Background()); err != nil {
		log.WithError(err).Warn("no model artifact resolved at startup; serving 503 until reload")
	} else {
		log.WithField("version", artifact.Version).Info("active model artifact ready")
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(predictionSvc, calibrator, registry, cfg.Limits)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/pricing")
	h.RegisterRoutes(api)

	// Health check with comparable-store ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := comparableRepo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
