package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edusmart/api/swagger"
	"github.com/noah-isme/edusmart/internal/handler"
	internalmiddleware "github.com/noah-isme/edusmart/internal/middleware"
	"github.com/noah-isme/edusmart/internal/repository"
	"github.com/noah-isme/edusmart/internal/scheduler"
	"github.com/noah-isme/edusmart/internal/service"
	"github.com/noah-isme/edusmart/pkg/cache"
	"github.com/noah-isme/edusmart/pkg/config"
	"github.com/noah-isme/edusmart/pkg/database"
	"github.com/noah-isme/edusmart/pkg/gemini"
	"github.com/noah-isme/edusmart/pkg/jobs"
	"github.com/noah-isme/edusmart/pkg/logger"
	corsmiddleware "github.com/noah-isme/edusmart/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edusmart/pkg/middleware/requestid"
	"github.com/noah-isme/edusmart/pkg/storage"
)

// @title EduSmart API
// @version 1.0.0
// @description Local console API of the EduSmart student performance tracker
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()

	datasets := repository.NewDatasetRepository(slot, repository.NewKeySealer(cfg.Storage.Secret), cfg.AI.APIKey, logr)
	datasets.OnCorruption(metrics.RecordCorruption)
	store, err := service.NewDatasetStore(ctx, datasets, metrics, logr)
	if err != nil {
		return err
	}

	validate := validator.New()
	students := service.NewStudentService(store, validate, logr)
	scores := service.NewScoreService(store, validate, logr)
	settings := service.NewSettingsService(store, logr)
	analytics := service.NewAnalyticsService(store)
	insights := service.NewInsightService(store, gemini.NewClient(cfg.AI.AttemptTimeout), metrics, logr)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exports := service.NewExportService(store, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
		FontFile:  cfg.Exports.FontFile,
	}, metrics, logr, service.ExportRenderers{})

	jobRepo := repository.NewExportJobRepository()
	worker := service.NewExportWorker(jobRepo, exports, insights, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: -1,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Warn("export job failed", zap.String("job_id", job.ID), zap.Error(err))
		},
	})
	queue.Start(ctx)
	defer queue.Stop()
	exportJobs := service.NewExportJobService(jobRepo, queue, exports, store, validate, logr, service.ExportJobConfig{ResultTTL: cfg.Exports.SignedURLTTL})

	cleanup := scheduler.New(exportJobs, cfg.Exports.CleanupInterval, logr)
	if err := cleanup.Start(ctx); err != nil {
		return err
	}
	defer cleanup.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Students:  handler.NewStudentHandler(students, scores),
		Settings:  handler.NewSettingsHandler(settings),
		Analytics: handler.NewAnalyticsHandler(analytics),
		Insights:  handler.NewInsightHandler(insights),
		Exports:   handler.NewExportHandler(exports, exportJobs),
		Metrics:   metricsHandler,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openSlot builds the dataset slot for the configured storage driver.
func openSlot(ctx context.Context, cfg *config.Config) (repository.Slot, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.StorageDriverFile, "":
		slot, err := storage.NewFileSlot(cfg.Storage.Dir, cfg.Storage.Key)
		return slot, noop, err
	case config.StorageDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return repository.NewRedisSlot(client, cfg.Storage.Key), func() { _ = client.Close() }, nil
	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		db, err := database.Open(cfg.Storage.Driver, cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("connect database: %w", err)
		}
		slot := repository.NewSQLSlot(db, cfg.Storage.Key)
		if err := slot.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return slot, func() { _ = db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
