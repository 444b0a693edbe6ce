package router

import (
	"net/http"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"github.com/catalogsync/backend/internal/interfaces/http/handler"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served by the catalog API
type Handlers struct {
	System  *handler.SystemHandler
	Product *handler.ProductHandler
	Sync    *handler.SyncHandler
	Report  *handler.ReportHandler
}

// EngineConfig holds everything NewEngine needs besides the handlers
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Swagger config.SwaggerConfig
	Tracing middleware.TracingConfig
	// Verifier guards the report routes; a disabled verifier leaves them open
	Verifier middleware.TokenVerifier
	// Meter may be nil, in which case no HTTP metrics are recorded
	Meter  *telemetry.MeterProvider
	Logger *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and every route.
//
// Middleware order:
//  1. Recovery - answer panics with 500
//  2. RequestID - generate or propagate X-Request-ID
//  3. Logger - request-scoped logger and access log
//  4. Tracing - server span, request attributes, error marking
//  5. Metrics - request counters and durations
//  6. CORS and security headers
//  7. BodyLimit
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(log, "/health"))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	if cfg.Meter != nil && cfg.Meter.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(cfg.Meter.Meter(middleware.HTTPMeterName), log))
	}
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.Secure())
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	jwtConfig := middleware.DefaultJWTConfig(cfg.Verifier)
	jwtConfig.Logger = log

	Mount(engine,
		Group{Prefix: "/system", Routes: []Route{
			{http.MethodGet, "/ping", h.System.Ping},
		}},
		Group{Prefix: "/products", Routes: []Route{
			{http.MethodPost, "/sync", h.Sync.Sync},
			{http.MethodGet, "/sync/status", h.Sync.Status},
			{http.MethodGet, "", h.Product.List},
			{http.MethodDelete, "/all", h.Product.DeleteAll},
			{http.MethodPost, "/:id", h.Product.Delete},
			{http.MethodDelete, "/:id", h.Product.Delete},
		}},
		Group{
			Prefix:     "/reports",
			Middleware: []gin.HandlerFunc{middleware.JWTAuthMiddlewareWithConfig(jwtConfig)},
			Routes: []Route{
				{http.MethodGet, "/deleted-percentage", h.Report.DeletedPercentage},
				{http.MethodGet, "/non-deleted-percentage", h.Report.NonDeletedPercentage},
				{http.MethodGet, "/custom-report", h.Report.CustomReport},
				{http.MethodGet, "/custom-report/export", h.Report.ExportCustomReport},
			},
		},
	)

	return engine
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
