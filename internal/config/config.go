// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request body size. Defaults to 1 MiB.
	MaxBodyBytes int64

	// TaxonomyLocale is the BCP-47 language whose casing rules decide when two
	// category or tag titles are the same. Defaults to "und" (language-neutral).
	TaxonomyLocale language.Tag

	// MigrateOnStart applies pending goose migrations before serving.
	// Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first malformed value.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, errors.New("MAX_BODY_BYTES must be a positive integer")
	}

	cfg.TaxonomyLocale, err = language.Parse(getEnv("TAXONOMY_LOCALE", "und"))
	if err != nil {
		return Config{}, fmt.Errorf("TAXONOMY_LOCALE: %w", err)
	}

	cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("MIGRATE_ON_START must be a boolean: %w", err)
	}

	return cfg, nil
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
