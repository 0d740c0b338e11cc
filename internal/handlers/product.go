package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/models"
	"github.com/diewo77/pos-ledger/internal/services"
	"github.com/diewo77/pos-ledger/validation"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	svc               *services.ProductService
	lowStockThreshold int
}

func NewProductHandler(svc *services.ProductService, lowStockThreshold int) *ProductHandler {
	return &ProductHandler{svc: svc, lowStockThreshold: lowStockThreshold}
}

func (h *ProductHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.List)
	mux.HandleFunc("POST /products", h.Create)
	mux.HandleFunc("GET /products/search", h.Search)
	mux.HandleFunc("GET /products/low-stock", h.LowStock)
	mux.HandleFunc("GET /products/{id}", h.Get)
	mux.HandleFunc("PUT /products/{id}", h.Update)
	mux.HandleFunc("DELETE /products/{id}", h.Delete)
	mux.HandleFunc("GET /products/{id}/movements", h.Movements)
}

type productInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
}

func (in productInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.NonNegativeDecimal("price", in.Price, v)
	return v
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.GetProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowStockThreshold
	if q := r.URL.Query().Get("threshold"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"threshold": "must_be_integer"})
			return
		}
		threshold = n
	}
	products, err := h.svc.GetLowStockProducts(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if p == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{Name: in.Name, Price: in.Price, StockQty: in.StockQty}
	if err := h.svc.SaveProduct(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in productInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{ID: id, Name: in.Name, Price: in.Price, StockQty: in.StockQty}
	if err := h.svc.UpdateProduct(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	movements, err := h.svc.StockMovements(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(movements))
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
