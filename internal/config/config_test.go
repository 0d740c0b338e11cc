package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "DB_BUSY_TIMEOUT_MS", "STRICT_MIGRATIONS", "APP_TIMEZONE", "LOW_STOCK_THRESHOLD", "DEV"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "pos.db" {
		t.Errorf("Path = %q, want pos.db", cfg.Database.Path)
	}
	if !cfg.App.StrictMigrations {
		t.Error("StrictMigrations should default to true")
	}
	if cfg.App.Dev {
		t.Error("Dev should default to false")
	}
	if cfg.App.LowStockThreshold != 5 {
		t.Errorf("LowStockThreshold = %d, want 5", cfg.App.LowStockThreshold)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/shop.db")
	t.Setenv("DB_BUSY_TIMEOUT_MS", "250")
	t.Setenv("STRICT_MIGRATIONS", "0")
	t.Setenv("DEV", "yes")
	t.Setenv("LOW_STOCK_THRESHOLD", "not-a-number")

	cfg := Load()
	if cfg.App.StrictMigrations {
		t.Error("StrictMigrations should be false")
	}
	if !cfg.App.Dev {
		t.Error("Dev should be true")
	}
	if cfg.App.LowStockThreshold != 5 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.App.LowStockThreshold)
	}
	dsn := cfg.Database.DSN()
	for _, want := range []string{"file:/tmp/shop.db?", "_busy_timeout=250", "_foreign_keys=on", "_txlock=immediate"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestLocation(t *testing.T) {
	if loc := (AppConfig{}).Location(); loc != time.UTC {
		t.Errorf("empty timezone = %v, want UTC", loc)
	}
	if loc := (AppConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("invalid timezone = %v, want UTC", loc)
	}
}
