package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from the environment and an
// optional .env file.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	DefaultUnits    string
	CORSOrigin      string

	RateLimitRPS   float64
	RateLimitBurst int

	// API accounts. When disabled no database is opened.
	AuthEnabled bool
	DatabaseURL string
	TokenKey    string

	TLSCertFile string
	TLSKeyFile  string
}

// Load reads .env (if present) and the environment, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	shutdownTimeout, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "1"), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_RPS")
	}
	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "3"))
	if err != nil || burst <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_BURST")
	}

	authEnabled, err := strconv.ParseBool(envOrDefault("AUTH_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid AUTH_ENABLED")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DefaultUnits:    strings.ToUpper(envOrDefault("DEFAULT_UNITS", "SI")),
		CORSOrigin:      envOrDefault("CORS_ORIGIN", "*"),
		RateLimitRPS:    rps,
		RateLimitBurst:  burst,
		AuthEnabled:     authEnabled,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenKey:        os.Getenv("TOKEN_KEY"),
		TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
	}

	if cfg.DefaultUnits != "SI" && cfg.DefaultUnits != "IP" {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS %q: want SI or IP", cfg.DefaultUnits)
	}
	if cfg.AuthEnabled && cfg.TokenKey == "" {
		return nil, errors.New("AUTH_ENABLED is true but TOKEN_KEY is not set")
	}
	if cfg.AuthEnabled && cfg.DatabaseURL == "" {
		return nil, errors.New("AUTH_ENABLED is true but DATABASE_URL is not set")
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	return cfg, nil
}

// TLS reports whether the server should terminate TLS itself.
func (c *Config) TLS() bool {
	return c.TLSCertFile != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
