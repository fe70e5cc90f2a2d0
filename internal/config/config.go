// Package config resolves runtime configuration from the environment.
// Binaries load a .env file first (godotenv) so local development and
// deployed environments read the same variable names.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// DefaultStorageKind is used when STORAGE_KIND is unset.
const DefaultStorageKind = "postgres"

// Config carries everything a binary needs to open storage and metrics.
type Config struct {
	// StorageKind selects the registered storage backend.
	StorageKind string
	// DSN is the backend connection string.
	DSN string

	// MetricsBackend selects the metrics exporter ("datadog" or "none").
	MetricsBackend string
	// MetricsTags are extra exporter tags, comma-separated ("env:prod,team:data").
	MetricsTags string
}

// Load reads configuration from the environment.
//
// DSN resolution:
//   - DATABASE_URL wins when set, for any backend.
//   - For postgres only, a URL is otherwise assembled from DB_HOST, DB_PORT,
//     DB_NAME, DB_USER and DB_PASSWORD (host defaults to localhost, port to
//     5432; name and user are required).
//
// Errors:
//   - Returns an error when no usable DSN can be resolved.
func Load() (*Config, error) {
	cfg := &Config{
		StorageKind:    envOr("STORAGE_KIND", DefaultStorageKind),
		DSN:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MetricsBackend: envOr("METRICS_BACKEND", "none"),
		MetricsTags:    strings.TrimSpace(os.Getenv("METRICS_TAGS")),
	}

	if cfg.DSN == "" && cfg.StorageKind == "postgres" {
		dsn, err := postgresURLFromParts()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		cfg.DSN = dsn
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required for storage kind %q", cfg.StorageKind)
	}
	return cfg, nil
}

// postgresURLFromParts assembles a postgres URL from the discrete DB_*
// variables used by older deployments.
func postgresURLFromParts() (string, error) {
	name := strings.TrimSpace(os.Getenv("DB_NAME"))
	user := strings.TrimSpace(os.Getenv("DB_USER"))
	if name == "" || user == "" {
		return "", fmt.Errorf("set DATABASE_URL, or DB_NAME and DB_USER")
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   envOr("DB_HOST", "localhost") + ":" + envOr("DB_PORT", "5432"),
		Path:   "/" + name,
	}
	if pw := os.Getenv("DB_PASSWORD"); pw != "" {
		u.User = url.UserPassword(user, pw)
	} else {
		u.User = url.User(user)
	}
	return u.String(), nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
