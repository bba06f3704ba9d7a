package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StatusPolicyForwardOnly = "forward_only"
	StatusPolicyFreeForm    = "free_form"
)

type Config struct {
	// Server
	Port           string   `env:"PORT, default=8080"`
	Environment    string   `env:"ENVIRONMENT, default=development"`
	BaseURL        string   `env:"BASE_URL, default=http://localhost:8080"`
	LogLevel       string   `env:"LOG_LEVEL, default=info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	// Remote REST backend
	APIBaseURL     string        `env:"API_BASE_URL, default=http://localhost:3000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
	BackendRetries int           `env:"BACKEND_RETRIES, default=3"`

	// Supabase
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabasePublishableKey string `env:"SUPABASE_PUBLISHABLE_KEY"`
	SupabaseJWTSecret      string `env:"SUPABASE_JWT_SECRET"`
	SupabaseStorageBucket  string `env:"SUPABASE_STORAGE_BUCKET, default=decor-images"`
	ImageHostAPIKey        string `env:"IMAGE_HOST_API_KEY"`

	// Database; empty means a local SQLite file.
	DatabaseURL string `env:"DATABASE_URL"`

	Session SessionConfig
	Redis   RedisConfig

	SearchDebounce      time.Duration `env:"SEARCH_DEBOUNCE, default=500ms"`
	ProjectStatusPolicy string        `env:"PROJECT_STATUS_POLICY, default=forward_only"`
}

type SessionConfig struct {
	CookieName   string        `env:"SESSION_COOKIE_NAME, default=elite_decor_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	TTL          time.Duration `env:"SESSION_TTL, default=720h"`
}

// RedisConfig is optional; an empty Addr keeps caches in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadFrom builds a Config from an arbitrary lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.BackendRetries < 1 {
		return fmt.Errorf("BACKEND_RETRIES must be at least 1")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	switch c.ProjectStatusPolicy {
	case StatusPolicyForwardOnly, StatusPolicyFreeForm:
	default:
		return fmt.Errorf("PROJECT_STATUS_POLICY must be %s or %s", StatusPolicyForwardOnly, StatusPolicyFreeForm)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// UsesPostgres reports whether DatabaseURL points at PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// ImageHostKey returns the key used for Storage uploads, falling back to the
// publishable key.
func (c *Config) ImageHostKey() string {
	if c.ImageHostAPIKey != "" {
		return c.ImageHostAPIKey
	}
	return c.SupabasePublishableKey
}
