package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/pos-ledger/internal/config"
	"github.com/diewo77/pos-ledger/internal/db"
)

func newTestApp(t *testing.T, dev bool) *App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	gdb, err := db.OpenDSN(dsn, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.EnsureSchema(gdb, db.MigrateOptions{Strict: true}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := &config.Config{App: config.AppConfig{Dev: dev, StrictMigrations: true, Timezone: "UTC", LowStockThreshold: 5}}
	return NewApp(gdb, cfg)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, false)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesOnlyInDev(t *testing.T) {
	prod := newTestApp(t, false)
	w := httptest.NewRecorder()
	prod.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/clear", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside dev, got %d", w.Code)
	}

	dev := newTestApp(t, true)
	w = httptest.NewRecorder()
	dev.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/clear", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 in dev, got %d", w.Code)
	}
}

func TestWithRecover(t *testing.T) {
	h := withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}
