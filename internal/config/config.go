package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendFile     = "file"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	LogLevel                slog.Level

	APIURL     string
	APITimeout time.Duration

	SessionBackend       string
	SessionFile          string
	SessionSecret        string
	SessionCheckInterval time.Duration
	DatabaseURL          string
	DBMaxConns           int32
	DBMinConns           int32

	StorageRoot      string
	StoragePublicURL string
	MaxUploadSize    int64

	SearchDebounce time.Duration
	PageLimit      int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		LogLevel:                getLevel("LOG_LEVEL", slog.LevelInfo),
		APIURL:                  getEnv("API_URL", "http://localhost:4000/graphql"),
		APITimeout:              getDuration("API_TIMEOUT", 15*time.Second),
		SessionBackend:          strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendFile)),
		SessionFile:             getEnv("SESSION_FILE", "./state/client-state.json"),
		SessionSecret:           strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionCheckInterval:    getDuration("SESSION_CHECK_INTERVAL", time.Minute),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 4)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		StorageRoot:             getEnv("STORAGE_ROOT", "./state/objects"),
		StoragePublicURL:        strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"), "/"),
		MaxUploadSize:           getInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		SearchDebounce:          getDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		PageLimit:               getInt("PAGE_LIMIT", 20),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	parsed, err := url.Parse(c.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL")
	}

	switch c.SessionBackend {
	case SessionBackendFile:
		if strings.TrimSpace(c.SessionFile) == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty")
		}
	case SessionBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendFile, SessionBackendPostgres)
	}

	if c.StorageRoot == "" {
		return fmt.Errorf("STORAGE_ROOT cannot be empty")
	}

	if _, err := url.Parse(c.StoragePublicURL); err != nil || c.StoragePublicURL == "" {
		return fmt.Errorf("STORAGE_PUBLIC_URL must be a valid URL")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.PageLimit <= 0 {
		return fmt.Errorf("PAGE_LIMIT must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getLevel(key string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}

	return level
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
