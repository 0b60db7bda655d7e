// Package config loads portal settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full portal configuration.
// APIBaseURL is the only value that changes how the core behaves; everything
// else selects infrastructure (ports, storage backends, logging).
type Config struct {
	APIBaseURL    string
	APITimeout    time.Duration
	Port          string
	CORSOrigins   []string
	WorkstationID string
	Ward          string

	// ReminderInterval is how often the unsubmitted-report check runs; 0 disables it.
	ReminderInterval time.Duration

	Log     LogConfig
	Session SessionConfig
	Redis   RedisConfig
	Export  ExportConfig
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// SessionConfig selects where the workstation session snapshot is persisted.
type SessionConfig struct {
	Backend string // file | redis
	File    string
	Secret  string // optional; seals the snapshot file when set
}

// RedisConfig is used when Session.Backend is "redis".
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ExportConfig selects where yearly workbooks are written.
type ExportConfig struct {
	Backend string // local | r2
	Dir     string
	BaseURL string

	R2AccountID string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string
	R2PublicURL string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		APITimeout:    getDuration("API_TIMEOUT", 10*time.Second),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		WorkstationID: getEnv("WORKSTATION_ID", hostnameOr("workstation")),
		Ward:          getEnv("WARD", "ward1"),

		ReminderInterval: getDuration("REMINDER_INTERVAL", 6*time.Hour),

		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "file"),
			File:    getEnv("SESSION_FILE", "data/session.json"),
			Secret:  os.Getenv("SESSION_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Export: ExportConfig{
			Backend:     getEnv("EXPORT_BACKEND", "local"),
			Dir:         getEnv("EXPORT_DIR", "exports"),
			BaseURL:     getEnv("EXPORT_BASE_URL", "/files"),
			R2AccountID: os.Getenv("R2_ACCOUNT_ID"),
			R2AccessKey: os.Getenv("R2_ACCESS_KEY"),
			R2SecretKey: os.Getenv("R2_SECRET_KEY"),
			R2Bucket:    os.Getenv("R2_BUCKET"),
			R2PublicURL: os.Getenv("R2_PUBLIC_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must start with http:// or https://, got %q", c.APIBaseURL)
	}
	switch c.Session.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q (want file or redis)", c.Session.Backend)
	}
	switch c.Export.Backend {
	case "local":
	case "r2":
		if c.Export.R2AccountID == "" || c.Export.R2Bucket == "" {
			return fmt.Errorf("EXPORT_BACKEND=r2 requires R2_ACCOUNT_ID and R2_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported EXPORT_BACKEND %q (want local or r2)", c.Export.Backend)
	}
	return nil
}

// APIURL is the versioned REST root all backend calls are made against.
func (c *Config) APIURL() string {
	return c.APIBaseURL + "/api/v1"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hostnameOr(fallback string) string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return fallback
}
