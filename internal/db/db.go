package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/diewo77/pos-ledger/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrInit is returned when the storage engine cannot be opened or written to.
// Callers must not proceed to any read or write once they see it.
var ErrInit = errors.New("storage_init_failed")

// Open connects to the SQLite file described by cfg.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	log.Printf("[DB] Opening sqlite database: path=%s busy_timeout=%dms", cfg.Path, cfg.BusyTimeoutMS)
	return OpenDSN(cfg.DSN(), cfg.Debug)
}

// OpenDSN connects using a raw go-sqlite3 DSN. Tests use it with in-memory databases.
func OpenDSN(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "[GORM] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	// Basic connectivity test; sqlite only touches the file on first use.
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("%w: ping: %w", ErrInit, pingErr)
	}
	return db, nil
}
