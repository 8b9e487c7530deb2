package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/orbit-landing/cmd/mainconfig"
	"github.com/wolfman30/orbit-landing/internal/analytics"
	"github.com/wolfman30/orbit-landing/internal/api/router"
	"github.com/wolfman30/orbit-landing/internal/app/bootstrap"
	appconfig "github.com/wolfman30/orbit-landing/internal/config"
	"github.com/wolfman30/orbit-landing/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/orbit-landing/internal/http/middleware"
	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/internal/notify"
	"github.com/wolfman30/orbit-landing/internal/observability/metrics"
	"github.com/wolfman30/orbit-landing/internal/waitlist"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting orbit landing API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"version", cfg.AppVersion,
	)

	ctx := context.Background()
	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler  http.Handler
	sessions *intake.SessionManager
	limiter  *httpmiddleware.RateLimiter
	sink     analytics.Sink
	backend  *bootstrap.WaitlistBackend
	pool     *pgxpool.Pool
	redis    *redis.Client
	logger   *logging.Logger
}

// Close releases resources in reverse dependency order.
func (a *app) Close() {
	a.sessions.Close()
	a.limiter.Close()
	if f, ok := a.sink.(interface{ Flush() }); ok {
		f.Flush()
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("close waitlist backend", "error", err)
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	var awsCfg *aws.Config
	if loaded, err := mainconfig.LoadAWSConfig(ctx, cfg); err != nil {
		logger.Warn("AWS config unavailable; S3, SQS, SES and DynamoDB are disabled", "error", err)
	} else {
		awsCfg = &loaded
	}

	var pool *pgxpool.Pool
	if cfg.StoreBackend() == appconfig.StorePostgres {
		pool = connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	}
	backend, err := bootstrap.BuildWaitlistBackend(cfg, pool, awsCfg, logger)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	logger.Info("waitlist store ready", "backend", backend.Kind)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	metricsHandler, intakeMetrics, uploadMetrics := setupMetrics()
	sink := bootstrap.BuildAnalyticsSink(cfg, awsCfg, logger)
	confirmer := notify.NewWaitlistConfirmer(bootstrap.BuildEmailSender(cfg, awsCfg, logger), logger)

	wizardOpts := []intake.Option{
		intake.WithSink(sink),
		intake.WithMetrics(intakeMetrics),
		intake.WithNotifier(confirmer),
		intake.WithLogger(logger),
		intake.WithTimeout(cfg.SubmitTimeout),
	}
	if lock := bootstrap.BuildSubmitLock(redisClient, cfg, logger); lock != nil {
		wizardOpts = append(wizardOpts, intake.WithSubmitLock(lock))
	}
	factory := func() *intake.Wizard { return intake.NewWizard(backend.Store, wizardOpts...) }
	sessions := intake.NewSessionManager(factory, cfg.IntakeSessionTTL)
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := router.New(&router.Config{
		Logger:        logger,
		Version:       cfg.AppVersion,
		IntakeHandler: intake.NewHandler(sessions, factory, logger),
		AdminWaitlist: waitlist.NewHandler(backend.Lister, logger),
		Avatar: handlers.NewAvatarHandler(handlers.AvatarConfig{
			Store:    bootstrap.BuildAvatarStore(cfg, awsCfg, logger),
			MaxBytes: cfg.AvatarMaxBytes,
			Metrics:  uploadMetrics,
			Sink:     sink,
			Logger:   logger,
		}),
		CSVHistory:     handlers.NewCSVHistoryHandler(nil, logger),
		SystemStatus:   handlers.NewSystemStatusHandler(cfg.AppVersion),
		ServeExpenses:  true,
		MetricsHandler: metricsHandler,
		RateLimiter:    limiter,

		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &app{
		handler:  handler,
		sessions: sessions,
		limiter:  limiter,
		sink:     sink,
		backend:  backend,
		pool:     pool,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

// setupMetrics builds a private registry so tests can call it repeatedly.
func setupMetrics() (http.Handler, *metrics.IntakeMetrics, *metrics.UploadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewIntakeMetrics(reg), metrics.NewUploadMetrics(reg)
}

// connectPostgresPool returns nil when url is empty or the database is unreachable.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}
