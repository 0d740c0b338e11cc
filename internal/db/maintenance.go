package db

import (
	"log"

	"gorm.io/gorm"
)

// dataTables lists every application table, children before parents.
var dataTables = []string{"invoice_sequences", "stock_movements", "sale_items", "sales", "customers", "products"}

// ClearAllData deletes every row from the application tables and resets their
// autoincrement counters. The schema itself is left untouched.
func ClearAllData(db *gorm.DB) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, table := range dataTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return tx.Exec("DELETE FROM sqlite_sequence WHERE name IN ?", dataTables).Error
	})
	if err != nil {
		return err
	}
	log.Println("[DB] all data cleared")
	return nil
}

// RecreateTables drops every table, including the migration history, and
// rebuilds the schema from scratch. All data is lost.
func RecreateTables(db *gorm.DB, opts MigrateOptions) error {
	for _, table := range append(dataTables, "schema_migrations") {
		if err := db.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
			return err
		}
	}
	log.Println("[DB] tables dropped, rebuilding schema")
	return EnsureSchema(db, opts)
}
