package handlers

import (
	"log"
	"net/http"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/db"
	"gorm.io/gorm"
)

// AdminHandler exposes destructive maintenance operations. It is only
// registered in development mode.
type AdminHandler struct {
	db   *gorm.DB
	opts db.MigrateOptions
}

func NewAdminHandler(gdb *gorm.DB, opts db.MigrateOptions) *AdminHandler {
	return &AdminHandler{db: gdb, opts: opts}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/clear", h.Clear)
	mux.HandleFunc("POST /admin/recreate", h.Recreate)
}

func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := db.ClearAllData(h.db.WithContext(r.Context())); err != nil {
		log.Printf("[admin] clear failed: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *AdminHandler) Recreate(w http.ResponseWriter, r *http.Request) {
	if err := db.RecreateTables(h.db.WithContext(r.Context()), h.opts); err != nil {
		log.Printf("[admin] recreate failed: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "recreated"})
}
