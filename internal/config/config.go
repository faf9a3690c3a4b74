package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	App  AppConfig
	DB   DBConfig
	Auth AuthConfig
	CORS CORSConfig
	Mail MailConfig
}

type AppConfig struct {
	Name    string
	Port    string
	GinMode string
}

type DBConfig struct {
	// URL is either a postgres DSN or "sqlite://<path>".
	URL string
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	// MFARequired gates login behind a TOTP enrollment/challenge step.
	MFARequired bool
	// PendingTokenExpiry bounds the window between password check and
	// second-factor verification.
	PendingTokenExpiry time.Duration
	ResetTokenExpiry   time.Duration
}

type CORSConfig struct {
	Origin string
}

type MailConfig struct {
	// Provider is "smtp" or "console" (development: reset mails are logged).
	Provider string
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	ResetURL string
}

var globalConfig *Config

// Load reads configuration from .env / environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "CareBridge API"),
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", "sqlite://./carebridge.db"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenExpiry:        time.Duration(getEnvAsInt("TOKEN_EXPIRY_MINUTES", 24*60)) * time.Minute,
			MFARequired:        getEnvAsBool("MFA_REQUIRED", false),
			PendingTokenExpiry: time.Duration(getEnvAsInt("MFA_PENDING_MINUTES", 5)) * time.Minute,
			ResetTokenExpiry:   time.Duration(getEnvAsInt("RESET_TOKEN_MINUTES", 30)) * time.Minute,
		},
		CORS: CORSConfig{
			Origin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Mail: MailConfig{
			Provider: getEnv("MAIL_PROVIDER", "console"),
			SMTPHost: getEnv("SMTP_HOST", ""),
			SMTPPort: getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "noreply@carebridge.co.uk"),
			ResetURL: getEnv("RESET_URL", "http://localhost:5173/auth?reset=true"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			panic(fmt.Sprintf("config not loaded: %v", err))
		}
		return cfg
	}
	return globalConfig
}

// Set replaces the global configuration. Used by tests.
func Set(cfg *Config) {
	globalConfig = cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
