package router

import (
	"github.com/gin-gonic/gin"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the global middleware chain needs
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	// Tokens validates bearer tokens; nil serves every request anonymously
	Tokens middleware.TokenValidator
	// Meter records HTTP metrics; nil disables them
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEngine creates a gin engine with the global middleware stack installed.
// Order matters: the request id and server span exist before anything logs,
// and the caller is resolved before span attributes and metrics are taken.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		logger.GinMiddleware(log),
		middleware.CORS(corsConfig(cfg.HTTP)),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.RequestTimeout(cfg.HTTP.RequestTimeout),
	)
	if cfg.Tokens != nil {
		engine.Use(middleware.Authenticate(cfg.Tokens, log))
	}
	engine.Use(
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter, log),
	)
	return engine
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	cc.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cc.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cc.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cc
}
