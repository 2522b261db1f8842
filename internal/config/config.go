// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server and slipctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "5000".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// DBPath is the SQLite database file. Its parent directory is created on open.
	DBPath string

	// DatabaseURL is an optional Postgres connection string. When set it
	// replaces the SQLite store at DBPath.
	DatabaseURL string

	// ExportDir receives the daily slips-<date>.csv files.
	ExportDir string

	// StaticDir holds the browser form assets served at /. Ignored if absent.
	StaticDir string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	Kimai Kimai
	Redis Redis
}

// Kimai configures the upstream time-tracking integration. Missing credentials
// are not a load error; the lookup endpoints report "not configured" instead.
type Kimai struct {
	BaseURL  string
	Token    string
	Username string
	// AuthMode is "token" (bearer header) or "xauth" (X-AUTH-USER/X-AUTH-TOKEN).
	AuthMode string
	CacheTTL time.Duration
}

// Redis configures the optional shared lookup cache. An empty Addr keeps the
// cache in process memory.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming every variable that is set but malformed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "5000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBPath:      getEnv("DB_PATH", "data/slips.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ExportDir:   getEnv("EXPORT_DIR", "exports"),
		StaticDir:   getEnv("STATIC_DIR", "static"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Kimai: Kimai{
			BaseURL:  os.Getenv("KIMAI_BASE_URL"),
			Token:    os.Getenv("KIMAI_API_TOKEN"),
			Username: os.Getenv("KIMAI_USERNAME"),
			AuthMode: strings.ToLower(getEnv("KIMAI_AUTH_MODE", "token")),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var invalid []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		invalid = append(invalid, "PORT")
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	cfg.MaxBodyBytes = maxBody

	ttl, err := strconv.Atoi(getEnv("KIMAI_CACHE_TTL_SECONDS", "300"))
	if err != nil || ttl < 0 {
		invalid = append(invalid, "KIMAI_CACHE_TTL_SECONDS")
	}
	cfg.Kimai.CacheTTL = time.Duration(ttl) * time.Second

	if cfg.Kimai.AuthMode != "token" && cfg.Kimai.AuthMode != "xauth" {
		invalid = append(invalid, "KIMAI_AUTH_MODE")
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil || db < 0 {
		invalid = append(invalid, "REDIS_DB")
	}
	cfg.Redis.DB = db

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Variables already set are not overridden, and a
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", f, err)
		}
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
