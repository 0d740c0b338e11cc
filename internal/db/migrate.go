package db

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"regexp"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrMigration wraps any failure while bringing the schema up to date.
var ErrMigration = errors.New("schema_migration_failed")

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MigrateOptions controls how EnsureSchema reacts to failing column migrations.
type MigrateOptions struct {
	// Strict makes a failed column migration fatal. When false the failure is
	// logged and startup continues with the column missing.
	Strict bool
}

// ColumnMigration adds one column to an existing table and backfills it.
type ColumnMigration struct {
	Table      string
	Column     string
	Definition string // type and constraints as written after the column name
	Backfill   string // optional statement run right after the column is added
}

// columnMigrations are applied in order after the versioned SQL migrations.
var columnMigrations = []ColumnMigration{
	{
		Table:      "sales",
		Column:     "order_date",
		Definition: "DATETIME",
		Backfill:   "UPDATE sales SET order_date = date WHERE order_date IS NULL",
	},
	{
		Table:      "sale_items",
		Column:     "discount",
		Definition: "DECIMAL(5,2) NOT NULL DEFAULT 0",
	},
}

// EnsureSchema brings the database to the current schema. It is safe to call
// on every startup: versioned migrations already applied are skipped and
// column migrations check the live schema first.
func EnsureSchema(db *gorm.DB, opts MigrateOptions) error {
	if err := runSQLMigrations(db); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}
	for _, cm := range columnMigrations {
		applied, err := MigrateColumn(db, cm)
		if err != nil {
			if opts.Strict {
				return fmt.Errorf("%w: %w", ErrMigration, err)
			}
			log.Printf("[DB] column migration %s.%s failed, continuing: %v", cm.Table, cm.Column, err)
			continue
		}
		if applied {
			log.Printf("[DB] added column %s.%s", cm.Table, cm.Column)
		}
	}
	return nil
}

// runSQLMigrations applies the embedded migrations with golang-migrate.
func runSQLMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	// m.Close is not called: the sqlite3 driver would close the shared *sql.DB.
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrateColumn adds cm.Column to cm.Table when the live schema lacks it, then
// runs the backfill in the same transaction. It reports whether anything changed.
func MigrateColumn(db *gorm.DB, cm ColumnMigration) (bool, error) {
	if !identRegex.MatchString(cm.Table) || !identRegex.MatchString(cm.Column) {
		return false, fmt.Errorf("invalid identifier %q.%q", cm.Table, cm.Column)
	}
	if !db.Migrator().HasTable(cm.Table) {
		return false, fmt.Errorf("table %s does not exist", cm.Table)
	}
	exists, err := hasColumn(db, cm.Table, cm.Column)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", cm.Table, cm.Column, cm.Definition)
		if err := tx.Exec(ddl).Error; err != nil {
			return err
		}
		if cm.Backfill != "" {
			if err := tx.Exec(cm.Backfill).Error; err != nil {
				return fmt.Errorf("backfill: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("add column %s.%s: %w", cm.Table, cm.Column, err)
	}
	return true, nil
}

// hasColumn reads PRAGMA table_info rather than matching the CREATE statement text.
func hasColumn(db *gorm.DB, table, column string) (bool, error) {
	var cols []struct {
		Name string
	}
	if err := db.Raw(fmt.Sprintf("PRAGMA table_info(%s)", table)).Scan(&cols).Error; err != nil {
		return false, err
	}
	for _, c := range cols {
		if c.Name == column {
			return true, nil
		}
	}
	return false, nil
}
