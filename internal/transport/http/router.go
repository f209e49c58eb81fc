package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/writing-assistant/internal/ratelimit"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/handler"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	Logger          *slog.Logger
	Auth            *handler.AuthHandler
	Content         *handler.ContentHandler
	Health          *handler.HealthHandler
	Sessions        middleware.SessionResolver
	GenerateLimiter ratelimit.Limiter
	AllowedOrigins  []string
	TrustedProxies  []string

	// HSTS enables Strict-Transport-Security; set it when served over TLS.
	HSTS bool
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(sloggin.NewWithConfig(cfg.Logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		Filters:          []sloggin.Filter{sloggin.IgnorePath("/health", "/health/ready")},
	}))
	r.Use(middleware.Metrics())

	r.GET("/", cfg.Health.Root)
	r.GET("/health", cfg.Health.Live)
	r.GET("/health/ready", cfg.Health.Ready)

	r.POST("/register", cfg.Auth.Register)
	r.POST("/login", cfg.Auth.Login)
	r.POST("/google_auth", cfg.Auth.GoogleAuth)

	authMW := middleware.Auth(cfg.Sessions, cfg.Logger)

	r.GET("/me", authMW, cfg.Auth.Me)
	r.GET("/logout", authMW, cfg.Auth.Logout)

	// Protected content routes. Both "/content" and "/content/" are served.
	content := r.Group("/content", authMW)
	content.POST("", cfg.Content.Create)
	content.POST("/", cfg.Content.Create)
	content.GET("", cfg.Content.List)
	content.GET("/", cfg.Content.List)
	content.POST("/generate", middleware.RateLimit("generate", cfg.GenerateLimiter), cfg.Content.Generate)
	content.GET("/:id", cfg.Content.Get)
	content.PUT("/:id", cfg.Content.Update)
	content.DELETE("/:id", cfg.Content.Delete)

	return r, nil
}
