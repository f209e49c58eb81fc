package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS"          envDefault:"10" validate:"min=1,max=200"`
	DBMinConns  int32  `env:"DB_MIN_CONNS"          envDefault:"2"  validate:"min=0,ltefield=DBMaxConns"`
	MetricsPort string `env:"METRICS_PORT"          envDefault:"9090"`

	JWTSecret  string `env:"JWT_SECRET,required" validate:"required,min=32"`
	BcryptCost int    `env:"BCRYPT_COST"         envDefault:"12" validate:"min=4,max=31"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID,required" validate:"required"`
	GoogleJWKSURL  string `env:"GOOGLE_JWKS_URL"           envDefault:"https://www.googleapis.com/oauth2/v3/certs" validate:"url"`

	GeminiAPIKey    string        `env:"GEMINI_API_KEY,required" validate:"required"`
	GeminiModel     string        `env:"GEMINI_MODEL"            envDefault:"gemini-1.5-flash" validate:"required"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"        envDefault:"30s" validate:"gt=0"`

	GenerateRateLimit  int           `env:"GENERATE_RATE_LIMIT"  envDefault:"3"  validate:"min=0"`
	GenerateRateWindow time.Duration `env:"GENERATE_RATE_WINDOW" envDefault:"1m" validate:"gt=0"`

	// Redis is optional. Without it the limiter and revocation list are
	// per-process.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	RevokeOnLogout  bool          `env:"REVOKE_ON_LOGOUT" envDefault:"false"`
	CookieSecure    bool          `env:"COOKIE_SECURE"    envDefault:"true"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"5m" validate:"gt=0"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000" envSeparator:","`
	TrustedProxies []string `env:"TRUSTED_PROXIES"      envSeparator:","`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
