package main

import (
	"log"
	"net/http"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/config"
	"github.com/diewo77/pos-ledger/internal/db"
	"github.com/diewo77/pos-ledger/internal/handlers"
	"github.com/diewo77/pos-ledger/internal/services"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
	cfg *config.Config
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		cfg: cfg,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withRecover(a.mux).ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	loc := a.cfg.App.Location()

	a.mux.HandleFunc("GET /healthz", a.healthz)

	handlers.NewProductHandler(services.NewProductService(a.db), a.cfg.App.LowStockThreshold).Register(a.mux)
	handlers.NewCustomerHandler(services.NewCustomerService(a.db)).Register(a.mux)
	handlers.NewSaleHandler(services.NewSaleService(a.db, loc), loc).Register(a.mux)

	// Destructive maintenance endpoints exist only in development.
	if a.cfg.App.Dev {
		handlers.NewAdminHandler(a.db, db.MigrateOptions{Strict: a.cfg.App.StrictMigrations}).Register(a.mux)
	}
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[http] panic on %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
