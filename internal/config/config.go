// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds the embedded SQLite settings.
type DatabaseConfig struct {
	Path          string
	BusyTimeoutMS int
	Debug         bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev               bool
	StrictMigrations  bool
	Seed              bool
	Timezone          string
	LowStockThreshold int
}

// DSN returns the SQLite connection string. Foreign keys are enforced and
// every transaction takes the write lock at BEGIN, so concurrent sale writers
// are serialized by the engine.
func (d DatabaseConfig) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.Itoa(d.BusyTimeoutMS))
	q.Set("_txlock", "immediate")
	return fmt.Sprintf("file:%s?%s", d.Path, q.Encode())
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Printf("[config] invalid APP_TIMEZONE %q, using UTC: %v", a.Timezone, err)
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Path:          getEnv("DB_PATH", "pos.db"),
			BusyTimeoutMS: getEnvInt("DB_BUSY_TIMEOUT_MS", 5000),
			Debug:         getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:               getEnvBool("DEV", false),
			StrictMigrations:  getEnvBool("STRICT_MIGRATIONS", true),
			Seed:              getEnvBool("DB_SEED", false),
			Timezone:          getEnv("APP_TIMEZONE", "UTC"),
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
