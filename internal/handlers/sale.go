package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/models"
	"github.com/diewo77/pos-ledger/internal/services"
	"github.com/diewo77/pos-ledger/validation"
	"github.com/shopspring/decimal"
)

var (
	maxDiscount = decimal.NewFromInt(100)
	// rangeEnd stands in for an open upper bound on date filters.
	rangeEnd = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

type SaleHandler struct {
	svc *services.SaleService
	loc *time.Location
}

func NewSaleHandler(svc *services.SaleService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{svc: svc, loc: loc}
}

func (h *SaleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /sales", h.List)
	mux.HandleFunc("POST /sales", h.Create)
	mux.HandleFunc("GET /sales/revenue", h.Revenue)
	mux.HandleFunc("GET /sales/{id}", h.Get)
	mux.HandleFunc("PUT /sales/{id}", h.Update)
	mux.HandleFunc("DELETE /sales/{id}", h.Delete)
}

type saleItemInput struct {
	ProductID   models.ProductRef `json:"product_id"`
	ProductName string            `json:"product_name"`
	Quantity    int               `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Discount    decimal.Decimal   `json:"discount"`
}

type saleInput struct {
	Customer  models.CustomerSnapshot `json:"customer"`
	Date      string                  `json:"date"`
	OrderDate string                  `json:"order_date"`
	Items     []saleItemInput         `json:"items"`
}

func (in saleInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("customer.name", in.Customer.Name, v)
	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	for i, it := range in.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		validation.Required(prefix+"product_name", it.ProductName, v)
		validation.PositiveInt(prefix+"quantity", it.Quantity, v)
		validation.NonNegativeDecimal(prefix+"unit_price", it.UnitPrice, v)
		validation.RangeDecimal(prefix+"discount", it.Discount, decimal.Zero, maxDiscount, v)
	}
	return v
}

// toSale builds the model from the request. Dates are parsed in the
// handler's location.
func (h *SaleHandler) toSale(in saleInput) (*models.Sale, error) {
	sale := &models.Sale{Customer: in.Customer}
	if strings.TrimSpace(in.Date) != "" {
		d, err := services.ParseDate(in.Date, h.loc)
		if err != nil {
			return nil, err
		}
		sale.Date = d
	}
	if strings.TrimSpace(in.OrderDate) != "" {
		d, err := services.ParseOrderDate(in.OrderDate, h.loc)
		if err != nil {
			return nil, err
		}
		sale.OrderDate = d
	}
	for _, it := range in.Items {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
		})
	}
	return sale, nil
}

func (h *SaleHandler) decode(w http.ResponseWriter, r *http.Request) (*models.Sale, bool) {
	var in saleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return nil, false
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return nil, false
	}
	sale, err := h.toSale(in)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return sale, true
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		sales []models.Sale
		err   error
	)
	if q.Get("from") == "" && q.Get("to") == "" {
		sales, err = h.svc.GetSales(r.Context())
	} else {
		start, end, rerr := h.parseRange(r)
		if rerr != nil {
			writeServiceError(w, rerr)
			return
		}
		sales, err = h.svc.GetSalesByDateRange(r.Context(), start, end)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(sales))
}

func (h *SaleHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseRange(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	total, err := h.svc.Revenue(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"revenue": total.StringFixed(2)})
}

// parseRange reads the from/to query parameters. A bare date in "to" covers
// that whole day.
func (h *SaleHandler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, end := time.Unix(0, 0).UTC(), rangeEnd
	if s := strings.TrimSpace(q.Get("from")); s != "" {
		t, err := services.ParseDate(s, h.loc)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if s := strings.TrimSpace(q.Get("to")); s != "" {
		t, err := services.ParseDate(s, h.loc)
		if err != nil {
			return start, end, err
		}
		if len(s) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		end = t
	}
	return start, end, nil
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.svc.GetSaleByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sale == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.decode(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.CreateSale(r.Context(), sale); err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondWithSale(w, r, sale.ID, http.StatusCreated)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, ok := h.decode(w, r)
	if !ok {
		return
	}
	sale.ID = id
	if err := h.svc.UpdateSale(r.Context(), sale); err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondWithSale(w, r, id, http.StatusOK)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWithSale reloads the sale so the response shows what was stored.
func (h *SaleHandler) respondWithSale(w http.ResponseWriter, r *http.Request, id uint, status int) {
	stored, err := h.svc.GetSaleByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if stored == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, status, stored)
}
