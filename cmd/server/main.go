package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnshRaj112/clima-backend/internal/config"
	"github.com/AnshRaj112/clima-backend/internal/database"
	"github.com/AnshRaj112/clima-backend/internal/handlers"
	"github.com/AnshRaj112/clima-backend/internal/middleware"
	"github.com/AnshRaj112/clima-backend/internal/observability"
	"github.com/AnshRaj112/clima-backend/internal/routes"
	"github.com/AnshRaj112/clima-backend/internal/services"
	"github.com/AnshRaj112/clima-backend/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics, clock); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) error {
	// Feedback store
	var store services.FeedbackStore
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory feedback store; data is lost on restart")
		store = services.NewMemoryFeedbackStore(clock)
	default:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.DisconnectMongo(client); err != nil {
				logger.Error("mongodb disconnect", "error", err)
			}
		}()

		mongoStore := services.NewMongoFeedbackStore(db, clock)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to ensure feedback indexes", "error", err)
		}
		store = mongoStore
	}

	// Redis: weather cache and request limiting (optional)
	cache := services.NewCacheService(nil)
	var redisLimiter *middleware.RedisRateLimiter
	if cfg.RedisURI != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = services.NewCacheService(rdb)
		redisLimiter = middleware.NewRedisRateLimiter(rdb, logger)
	} else {
		logger.Info("REDIS_URI not set; weather cache and redis rate limiting disabled")
	}

	// PostgreSQL: admin login audit (optional)
	var auditor services.LoginAuditor = services.NoopLoginAuditor{}
	if cfg.PostgresURI != "" {
		pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		pgAuditor := services.NewPostgresLoginAuditor(pg)
		if err := pgAuditor.EnsureSchema(ctx); err != nil {
			return err
		}
		auditor = pgAuditor
	} else {
		logger.Info("POSTGRES_URI not set; admin login audit disabled")
	}

	// Kafka: feedback events (optional)
	var publisher services.FeedbackPublisher = services.NoopFeedbackPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = services.NewKafkaFeedbackPublisher(cfg.KafkaBrokers, cfg.KafkaFeedbackTopic)
		logger.Info("feedback events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaFeedbackTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close", "error", err)
		}
	}()

	// Admin session
	creds, err := services.NewAdminCredentials(cfg.AdminUsername, cfg.AdminSecret())
	if err != nil {
		return err
	}
	if creds.Username == "" {
		logger.Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set; admin login is disabled")
	}
	auth := services.NewSessionAuthority(cfg.JWTSecret, creds, clock, cfg.IsProduction())

	// Weather
	var provider weather.Provider = weather.NewClient(weather.Options{
		BaseURL:   cfg.WeatherBaseURL,
		Latitude:  cfg.WeatherLatitude,
		Longitude: cfg.WeatherLongitude,
		Timeout:   cfg.WeatherTimeout,
	}, metrics, logger)
	if cache.Enabled() {
		provider = weather.NewCachedProvider(provider, cache, cfg.WeatherCacheTTL, metrics, logger)
	}
	gateway := weather.NewGateway(provider, cfg.WeatherLatitude, cfg.WeatherLongitude, nil)

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit.
	// Non-production: Redis-based rate limit only, when Redis is configured.
	var security []func(http.Handler) http.Handler
	if cfg.IsProduction() {
		global := middleware.NewGlobalRateLimiter(clock)
		login := middleware.NewLoginRateLimiter(clock)
		go global.RunCleanup(ctx)
		go login.RunCleanup(ctx)
		security = middleware.ProductionSecurity(global, login)
		logger.Info("production security enabled (security headers, per-IP + login rate limiting)")
	} else if redisLimiter != nil {
		security = append(security, redisLimiter.Middleware)
	}

	router := routes.NewRouter(routes.Dependencies{
		Feedback:       handlers.NewFeedbackHandler(store, publisher, clock, cfg.RecentWindowDays, metrics, logger),
		AdminAuth:      handlers.NewAdminAuthHandler(auth, auditor, clock, metrics, logger),
		Admin:          handlers.NewAdminHandler(store, auditor, clock, cfg.ExportLocation, logger),
		Weather:        handlers.NewWeatherHandler(gateway, logger),
		Session:        auth,
		AllowedOrigins: cfg.AllowedOrigins,
		Security:       security,
		MetricsHandler: promhttp.Handler(),
		Logger:         logger,
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("clima backend running", "addr", srv.Addr, "env", cfg.Environment, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
