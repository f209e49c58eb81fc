package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/writing-assistant/config"
	"github.com/ErlanBelekov/writing-assistant/internal/auth"
	"github.com/ErlanBelekov/writing-assistant/internal/email"
	"github.com/ErlanBelekov/writing-assistant/internal/generator"
	"github.com/ErlanBelekov/writing-assistant/internal/health"
	"github.com/ErlanBelekov/writing-assistant/internal/identity"
	"github.com/ErlanBelekov/writing-assistant/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/writing-assistant/internal/log"
	"github.com/ErlanBelekov/writing-assistant/internal/maintenance"
	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/ErlanBelekov/writing-assistant/internal/ratelimit"
	httptransport "github.com/ErlanBelekov/writing-assistant/internal/transport/http"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/handler"
	"github.com/ErlanBelekov/writing-assistant/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
	}

	metrics.Register()
	janitor := maintenance.NewJanitor(cfg.JanitorInterval, logger)

	// Users
	userRepo := postgres.NewUserRepository(pool)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret))

	googleKeys, err := identity.NewCachedKeys(ctx, cfg.GoogleJWKSURL)
	if err != nil {
		stop()
		log.Fatalf("google jwks: %v", err)
	}
	google := identity.NewGoogleVerifier(cfg.GoogleClientID, googleKeys, identity.WithTimeout(cfg.UpstreamTimeout))

	authOpts := []usecase.AuthOption{
		usecase.WithWelcomeEmail(email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)),
	}
	if cfg.RevokeOnLogout {
		authOpts = append(authOpts, usecase.WithRevoker(newRevoker(rdb, janitor)))
	}
	authUsecase := usecase.NewAuthUsecase(userRepo, auth.NewPasswordHasher(cfg.BcryptCost), tokens, google, logger, authOpts...)
	authHandler := handler.NewAuthHandler(authUsecase, cfg.CookieSecure, logger)

	// Content
	gemini, err := generator.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		stop()
		log.Fatalf("gemini: %v", err)
	}
	contentRepo := postgres.NewContentRepository(pool)
	contentUsecase := usecase.NewContentUsecase(contentRepo, generator.NewArticleWriter(gemini), cfg.UpstreamTimeout, logger)
	contentHandler := handler.NewContentHandler(contentUsecase, logger)

	var checkerOpts []health.Option
	if rdb != nil {
		checkerOpts = append(checkerOpts, health.WithDependency("redis", health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})))
	}
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer, checkerOpts...)

	router, err := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:          logger,
		Auth:            authHandler,
		Content:         contentHandler,
		Health:          handler.NewHealthHandler(checker),
		Sessions:        authUsecase,
		GenerateLimiter: newGenerateLimiter(cfg, rdb, janitor, logger),
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustedProxies:  cfg.TrustedProxies,
		HSTS:            cfg.CookieSecure,
	})
	if err != nil {
		stop()
		log.Fatalf("router: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		if janitor.Len() > 0 {
			janitor.Start(ctx)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	authUsecase.Wait()
	<-janitorDone
}

// newGenerateLimiter shares windows through Redis when it is configured and
// falls back to a per-process limiter otherwise.
func newGenerateLimiter(cfg *config.Config, rdb *redis.Client, janitor *maintenance.Janitor, logger *slog.Logger) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, "writer:ratelimit:generate", cfg.GenerateRateLimit, cfg.GenerateRateWindow, logger)
	}
	l := ratelimit.NewMemoryLimiter(cfg.GenerateRateLimit, cfg.GenerateRateWindow)
	janitor.Add("rate_limit", l)
	return l
}

func newRevoker(rdb *redis.Client, janitor *maintenance.Janitor) auth.Revoker {
	if rdb != nil {
		return auth.NewRedisRevoker(rdb)
	}
	r := auth.NewMemoryRevoker()
	janitor.Add("revocations", r)
	return r
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
