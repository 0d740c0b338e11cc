package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/pos-ledger/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	d, err := OpenDSN(dsn, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return d
}

func migratedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d := openTestDB(t)
	if err := EnsureSchema(d, MigrateOptions{Strict: true}); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return d
}

func TestEnsureSchemaCreatesTables(t *testing.T) {
	d := migratedTestDB(t)
	for _, table := range []string{"products", "customers", "sales", "sale_items", "stock_movements", "invoice_sequences", "schema_migrations"} {
		if !d.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	for _, idx := range []string{"idx_products_name", "idx_customers_name", "idx_sales_date", "idx_sale_items_sale_id", "idx_sale_items_product_id", "idx_sales_invoice_number"} {
		var n int64
		d.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&n)
		if n != 1 {
			t.Errorf("missing index %s", idx)
		}
	}
	for _, col := range [][2]string{{"sales", "order_date"}, {"sale_items", "discount"}} {
		ok, err := hasColumn(d, col[0], col[1])
		if err != nil || !ok {
			t.Errorf("expected column %s.%s (err=%v)", col[0], col[1], err)
		}
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	d := migratedTestDB(t)
	if err := d.Create(&models.Product{Name: "Keep me"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(d, MigrateOptions{Strict: true}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	var n int64
	d.Model(&models.Product{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected data to survive re-runs, got %d products", n)
	}
}

func TestMigrateColumnBackfillsLegacyRows(t *testing.T) {
	d := openTestDB(t)
	// schema as it was before order_date existed
	if err := d.Exec(`CREATE TABLE sales (id INTEGER PRIMARY KEY AUTOINCREMENT, invoice_number TEXT NOT NULL, date DATETIME NOT NULL)`).Error; err != nil {
		t.Fatalf("legacy table: %v", err)
	}
	if err := d.Exec(`INSERT INTO sales (invoice_number, date) VALUES ('250101001', '2025-01-01 10:00:00+00:00'), ('250102001', '2025-01-02 09:30:00+00:00')`).Error; err != nil {
		t.Fatalf("legacy rows: %v", err)
	}

	applied, err := MigrateColumn(d, columnMigrations[0])
	if err != nil || !applied {
		t.Fatalf("expected column to be added, applied=%v err=%v", applied, err)
	}
	var backfilled int64
	d.Raw("SELECT count(*) FROM sales WHERE order_date = date").Scan(&backfilled)
	if backfilled != 2 {
		t.Fatalf("expected 2 backfilled rows, got %d", backfilled)
	}

	applied, err = MigrateColumn(d, columnMigrations[0])
	if err != nil || applied {
		t.Fatalf("second run should be a no-op, applied=%v err=%v", applied, err)
	}
}

func TestMigrateColumnRejectsBadInput(t *testing.T) {
	d := migratedTestDB(t)
	if _, err := MigrateColumn(d, ColumnMigration{Table: "sales; DROP TABLE sales", Column: "x", Definition: "TEXT"}); err == nil {
		t.Fatal("expected identifier error")
	}
	if _, err := MigrateColumn(d, ColumnMigration{Table: "nope", Column: "x", Definition: "TEXT"}); err == nil {
		t.Fatal("expected missing table error")
	}
}

func TestEnsureSchemaColumnFailurePolicy(t *testing.T) {
	orig := columnMigrations
	columnMigrations = append(append([]ColumnMigration{}, orig...), ColumnMigration{Table: "missing_table", Column: "extra", Definition: "TEXT"})
	t.Cleanup(func() { columnMigrations = orig })

	d := openTestDB(t)
	err := EnsureSchema(d, MigrateOptions{Strict: true})
	if !errors.Is(err, ErrMigration) {
		t.Fatalf("strict mode: expected ErrMigration, got %v", err)
	}
	if err := EnsureSchema(d, MigrateOptions{Strict: false}); err != nil {
		t.Fatalf("lenient mode should continue, got %v", err)
	}
	if ok, _ := hasColumn(d, "sales", "order_date"); !ok {
		t.Fatal("migrations before the failing one should still be applied")
	}
}

func TestUpdatedAtTrigger(t *testing.T) {
	d := migratedTestDB(t)
	if err := d.Exec(`INSERT INTO products (name, price, stock_qty, created_at, updated_at) VALUES ('Old', 1, 1, '2000-01-01 00:00:00', '2000-01-01 00:00:00')`).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := d.Exec(`UPDATE products SET stock_qty = 0 WHERE name = 'Old'`).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	var touched int64
	d.Raw(`SELECT count(*) FROM products WHERE name = 'Old' AND updated_at > '2000-01-02'`).Scan(&touched)
	if touched != 1 {
		t.Fatal("expected trigger to refresh updated_at")
	}
}

func TestClearAllData(t *testing.T) {
	d := migratedTestDB(t)
	for _, name := range []string{"A", "B"} {
		if err := d.Create(&models.Product{Name: name}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := d.Create(&models.Customer{Name: "C"}).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := ClearAllData(d); err != nil {
		t.Fatalf("clear: %v", err)
	}
	var products, customers int64
	d.Model(&models.Product{}).Count(&products)
	d.Model(&models.Customer{}).Count(&customers)
	if products != 0 || customers != 0 {
		t.Fatalf("expected empty tables, got products=%d customers=%d", products, customers)
	}
	p := models.Product{Name: "Fresh"}
	if err := d.Create(&p).Error; err != nil {
		t.Fatalf("insert after clear: %v", err)
	}
	if p.ID != 1 {
		t.Fatalf("expected id sequence reset, got %d", p.ID)
	}
}

func TestRecreateTables(t *testing.T) {
	d := migratedTestDB(t)
	if err := d.Create(&models.Product{Name: "Gone"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := RecreateTables(d, MigrateOptions{Strict: true}); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	var n int64
	d.Model(&models.Product{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no products after recreate, got %d", n)
	}
	if ok, _ := hasColumn(d, "sales", "order_date"); !ok {
		t.Fatal("expected order_date after recreate")
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := migratedTestDB(t)
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	var total, widgets int64
	d.Model(&models.Product{}).Count(&total)
	d.Model(&models.Product{}).Where("name = ?", "Widget").Count(&widgets)
	if total != 3 || widgets != 1 {
		t.Fatalf("seed not idempotent: total=%d widgets=%d", total, widgets)
	}
}

func TestOpenDSNFailure(t *testing.T) {
	_, err := OpenDSN("file:/nonexistent-dir/sub/pos.db?mode=ro", false)
	if !errors.Is(err, ErrInit) {
		t.Fatalf("expected ErrInit, got %v", err)
	}
}
