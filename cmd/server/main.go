package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	reportapp "github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/infrastructure/auth"
	"github.com/catalogsync/backend/internal/infrastructure/cache"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/contentful"
	"github.com/catalogsync/backend/internal/infrastructure/export"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/internal/infrastructure/scheduler"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"github.com/catalogsync/backend/internal/interfaces/http/handler"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/catalogsync/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/catalogsync/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Catalog Sync API
//	@version		1.0
//	@description	Mirrors a Contentful product catalog into PostgreSQL and serves listings and reports over it.

//	@contact.name	API Support
//	@contact.url	https://github.com/catalogsync/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting catalog sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	rootCtx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	logsProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer shutdown(log, "logger provider", logsProvider.Shutdown)
	log = logsProvider.Bridge(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.PyroscopeUser,
		BasicAuthPassword: cfg.Telemetry.PyroscopePassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.LinkSpanProfiles()
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithPlugins(telemetry.NewDBTracingPlugin(dbTracing, log)),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	syncRunRepo := persistence.NewGormSyncRunRepository(db.DB)

	// Report cache: Redis when reachable, in-process otherwise
	var reportCache reportapp.Cache
	if cfg.Report.CacheEnabled {
		reportCache, err = cache.Open(cfg.Redis, cache.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create report cache", zap.Error(err))
		}
		if closer, ok := reportCache.(io.Closer); ok {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Error("Error closing report cache", zap.Error(err))
				}
			}()
		}
	}

	// Catalog source
	source, err := contentful.NewAdapter(&contentful.Config{
		BaseURL:     cfg.Contentful.BaseURL,
		SpaceID:     cfg.Contentful.SpaceID,
		AccessToken: cfg.Contentful.AccessToken,
		Environment: cfg.Contentful.Environment,
		ContentType: cfg.Contentful.ContentType,
		PageSize:    cfg.Contentful.PageSize,
		Timeout:     cfg.Contentful.Timeout,
	}, contentful.WithLogger(log))
	if err != nil {
		log.Fatal("Invalid Contentful configuration", zap.Error(err))
	}

	syncOpts := []catalogapp.SyncServiceOption{
		catalogapp.WithSyncRunRepository(syncRunRepo),
	}
	if reportCache != nil {
		syncOpts = append(syncOpts, catalogapp.WithCacheInvalidator(reportCache))
	}

	if meterProvider.IsEnabled() {
		syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter(telemetry.SyncMeterName))
		if err != nil {
			log.Warn("Sync metrics disabled", zap.Error(err))
		} else {
			syncOpts = append(syncOpts, catalogapp.WithSyncMetrics(syncMetrics))
		}
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3SnapshotArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create snapshot archive", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		if err := archive.EnsureBucket(ensureCtx); err != nil {
			log.Warn("Snapshot bucket is not reachable, archiving may fail", zap.Error(err))
		}
		cancel()
		syncOpts = append(syncOpts, catalogapp.WithSnapshotArchive(archive))
		log.Info("Snapshot archiving enabled", zap.String("bucket", archive.GetBucket()))
	}

	// Application services
	var productCache catalogapp.CacheInvalidator
	if reportCache != nil {
		productCache = reportCache
	}
	productService := catalogapp.NewProductService(productRepo, productCache, log)
	syncService := catalogapp.NewSyncService(source, productRepo, cfg.Contentful.ContentType, log, syncOpts...)
	reportService := reportapp.NewReportService(productRepo, reportCache, cfg.Report.CacheTTL, log)

	// Sync scheduler (if enabled)
	var submitter scheduler.SyncSubmitter
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.DefaultSchedulerConfig()
		schedulerConfig.Enabled = true
		schedulerConfig.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
		schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
		schedulerConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
		schedulerConfig.RetryDelay = cfg.Scheduler.RetryDelay

		syncScheduler := scheduler.NewScheduler(schedulerConfig, syncService, log)
		if err := syncScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer shutdown(log, "sync scheduler", syncScheduler.Stop)
		submitter = syncScheduler

		schedule, err := scheduler.ParseCronSchedule(cfg.Scheduler.SyncCronSchedule)
		if err != nil {
			log.Fatal("Invalid sync schedule", zap.Error(err))
		}
		triggerConfig := scheduler.DefaultSyncTriggerConfig()
		triggerConfig.Schedule = schedule
		if cfg.Scheduler.CheckInterval > 0 {
			triggerConfig.CheckInterval = cfg.Scheduler.CheckInterval
		}
		syncTrigger := scheduler.NewSyncTrigger(triggerConfig, syncScheduler, log)
		if err := syncTrigger.Start(rootCtx); err != nil {
			log.Fatal("Failed to start sync trigger", zap.Error(err))
		}
		// stopped before the scheduler, since defers run in reverse
		defer shutdown(log, "sync trigger", syncTrigger.Stop)

		log.Info("Sync scheduler started",
			zap.String("schedule", schedule.String()),
			zap.Int("max_concurrent_jobs", schedulerConfig.MaxConcurrentJobs),
			zap.Duration("job_timeout", schedulerConfig.JobTimeout),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:    cfg.HTTP,
		Swagger: cfg.Swagger,
		Tracing: middleware.TracingConfig{
			ServiceName: serviceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Verifier: auth.NewJWTVerifier(cfg.Auth),
		Meter:    meterProvider,
		Logger:   log,
	}, router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthCheck{
			"database": db.PingContext,
		}),
		Product: handler.NewProductHandler(productService),
		Sync:    handler.NewSyncHandler(syncService, submitter),
		Report:  handler.NewReportHandler(reportService, export.NewXLSXExporter()),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// shutdown stops a component with a bounded timeout, logging failures
func shutdown(log *zap.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
