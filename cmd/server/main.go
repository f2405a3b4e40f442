package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	bookingapp "github.com/travelpkg/backend/internal/application/booking"
	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	reportapp "github.com/travelpkg/backend/internal/application/report"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/infrastructure/auth"
	"github.com/travelpkg/backend/internal/infrastructure/cache"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"github.com/travelpkg/backend/internal/infrastructure/event"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/infrastructure/persistence"
	"github.com/travelpkg/backend/internal/infrastructure/storage"
	"github.com/travelpkg/backend/internal/infrastructure/telemetry"
	"github.com/travelpkg/backend/internal/interfaces/http/handler"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
	"github.com/travelpkg/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting travel backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", mp.Shutdown)
	meter := mp.Meter("github.com/travelpkg/backend")

	// Database
	dbOpts := []persistence.Option{
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.DBSystem = cfg.Database.Driver
		dbTracing.SlowQueryThresh = cfg.Database.SlowQueryThresh
		dbOpts = append(dbOpts, persistence.WithPlugins(telemetry.NewDBTracingPlugin(dbTracing, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Caches: redis when reachable, in-memory otherwise
	caches := cache.Connect(ctx, cfg.Redis, log)
	defer func() {
		if err := caches.Close(); err != nil {
			log.Error("Error closing caches", zap.Error(err))
		}
	}()

	// Repositories
	packageRepo := persistence.NewGormPackageRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	noticeRepo := persistence.NewGormNoticeRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Broker.Enabled {
		publisher := event.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing broker publisher", zap.Error(err))
			}
		}()
		forwarder := event.NewReservationForwarder(publisher, 5*time.Second, log)
		eventBus.Subscribe(event.NewIdempotentHandler(forwarder, caches.IdempotencyStore(), cfg.Booking.IdempotencyTTL, log))
		log.Info("Reservation events forwarded to broker", zap.String("queue", cfg.Broker.Queue))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	// Application services
	authz := auth.NewAdminAllowlist(cfg.Auth.AdminEmails)
	if authz.Len() == 0 {
		log.Warn("No administrators configured; admin endpoints will refuse every caller")
	}
	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize token validation", zap.Error(err))
	}

	packageOpts := []catalogapp.PackageServiceOption{
		catalogapp.WithEventPublisher(eventBus),
		catalogapp.WithLogger(log),
	}
	feed, err := storage.NewFeedSource(ctx, &cfg.Feed, log)
	if err != nil {
		log.Warn("Listing feed unavailable, feed sync disabled", zap.Error(err))
	} else {
		packageOpts = append(packageOpts, catalogapp.WithFeedSource(feed))
	}
	packageService := catalogapp.NewPackageService(packageRepo, catalog.NewNormalizer(normalizerConfig(cfg.Catalog)), authz, packageOpts...)

	reservationOpts := []bookingapp.ReservationServiceOption{
		bookingapp.WithIdempotencyStore(caches.IdempotencyStore(), cfg.Booking.IdempotencyTTL),
		bookingapp.WithEventPublisher(eventBus),
		bookingapp.WithLogger(log),
	}
	if bookingMetrics, err := telemetry.NewBookingMetrics(meter); err != nil {
		log.Warn("Booking metrics disabled", zap.Error(err))
	} else {
		reservationOpts = append(reservationOpts, bookingapp.WithMetrics(bookingMetrics))
	}
	reservationService := bookingapp.NewReservationService(reservationRepo, packageRepo, authz, reservationOpts...)

	dashboardService := reportapp.NewDashboardService(packageRepo, reservationRepo, noticeRepo, authz, caches.DashboardCache(),
		reportapp.DashboardOptions{
			TopPackages:         cfg.Dashboard.TopPackages,
			MaxReservationsScan: cfg.Dashboard.MaxReservationsScan,
			NoticeLimit:         cfg.Dashboard.NoticeLimit,
			CacheTTL:            cfg.Dashboard.CacheTTL,
		}, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	checks := map[string]handler.Pinger{"database": db}
	if client := caches.Redis(); client != nil {
		checks["redis"] = redisPinger{client}
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Tokens: jwtService,
		Meter:  meter,
		Logger: log,
	})
	router.Mount(engine, router.Handlers{
		Packages:     handler.NewPackageHandler(packageService),
		Reservations: handler.NewReservationHandler(reservationService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Health:       handler.NewHealthHandler(cfg.App.Name, version, checks),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// normalizerConfig maps the catalog settings onto the normalizer; unset
// values fall back to the normalizer defaults
func normalizerConfig(cfg config.CatalogConfig) catalog.NormalizerConfig {
	return catalog.NormalizerConfig{
		DiscountRatio:   decimal.NewFromFloat(cfg.DiscountRatio),
		DefaultDuration: cfg.DefaultDuration,
		DefaultCategory: cfg.DefaultCategory,
		DefaultSeason:   catalog.Season(cfg.DefaultSeason),
		CategoryMap:     cfg.CategoryMap,
		NightMarker:     cfg.NightMarker,
	}
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
