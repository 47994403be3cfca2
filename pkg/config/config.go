package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Import        ImportConfig
	Observability ObservabilityConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
	ShutdownTimeout    time.Duration
}

type StorageConfig struct {
	Backend string
	// Path is a directory for the json backend and a database file for sqlite.
	Path string
}

type ImportConfig struct {
	Dir          string
	ScanSchedule string
	ScanOnStart  bool
	Policy       string
	Workers      int
	MaxUploadMB  int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageJSON)),
			Path:    getEnv("STORAGE_PATH", "data"),
		},
		Import: ImportConfig{
			Dir:          getEnv("IMPORT_DIR", "extratos"),
			ScanSchedule: getEnv("IMPORT_SCAN_SCHEDULE", ""),
			ScanOnStart:  getEnvAsBool("IMPORT_SCAN_ON_START", false),
			Policy:       strings.ToLower(getEnv("IMPORT_POLICY", "overwrite")),
			Workers:      getEnvAsInt("IMPORT_WORKERS", 4),
			MaxUploadMB:  getEnvAsInt("IMPORT_MAX_UPLOAD_MB", 20),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageJSON, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.Storage.Backend)
	}
	switch c.Import.Policy {
	case "overwrite", "append":
	default:
		return fmt.Errorf("IMPORT_POLICY: unknown policy %q", c.Import.Policy)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT: unknown format %q", c.Log.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT: out of range: %d", c.Server.Port)
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("IMPORT_WORKERS: must be positive, got %d", c.Import.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
