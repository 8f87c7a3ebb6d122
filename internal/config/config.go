package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything the API process reads from its environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string

	JWTSecret  string
	JWTIssuer  string
	BcryptCost int

	AdminFrontendURL  string
	StudioFrontendURL string
	PublicBaseURL     string

	// email
	MailFrom            string
	ResendAPIKey        string
	UseEmailReputation  bool
	AbstractEmailAPIKey string

	// seed
	DefaultAdminEmail    string
	DefaultAdminPassword string
	DefaultAdminName     string

	LoginRatePerMinute int
	LoginBurst         int
	ShutdownTimeout    time.Duration

	// tracing is off unless OTEL_ENABLED=true
	OTELEnabled  bool
	OTELEndpoint string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Env:      strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		Port:     getEnv("PORT", "5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", "photocap-api"),

		AdminFrontendURL:  getEnv("ADMIN_FRONTEND_URL", "http://localhost:3001"),
		StudioFrontendURL: getEnv("STUDIO_FRONTEND_URL", "http://localhost:3000"),

		MailFrom:            getEnv("MAIL_FROM", "PhotoCap <onboarding@resend.dev>"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		UseEmailReputation:  getBool("USE_EMAIL_REPUTATION", false),
		AbstractEmailAPIKey: os.Getenv("ABSTRACT_EMAIL_API_KEY"),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@photocap.com"),
		DefaultAdminPassword: os.Getenv("DEFAULT_ADMIN_PASSWORD"),
		DefaultAdminName:     getEnv("DEFAULT_ADMIN_NAME", "Super Admin"),

		OTELEnabled:  getBool("OTEL_ENABLED", false),
		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port)

	var err error
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMinute, err = getInt("LOGIN_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.LoginBurst, err = getInt("LOGIN_RATE_BURST", 5); err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	// unsigned or default-signed tokens are never acceptable
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT: %s", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.UseEmailReputation && c.AbstractEmailAPIKey == "" {
		return errors.New("ABSTRACT_EMAIL_API_KEY is required when USE_EMAIL_REPUTATION=true")
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		return errors.New("login rate limit must be positive")
	}
	return nil
}

// IsDevelopment reports whether cookies may be sent without the Secure flag.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment || c.Env == "dev" || c.Env == "local"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
