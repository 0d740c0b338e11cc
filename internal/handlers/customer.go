package handlers

import (
	"net/http"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/models"
	"github.com/diewo77/pos-ledger/internal/services"
	"github.com/diewo77/pos-ledger/validation"
)

type CustomerHandler struct {
	svc *services.CustomerService
}

func NewCustomerHandler(svc *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /customers", h.List)
	mux.HandleFunc("POST /customers", h.Create)
	mux.HandleFunc("GET /customers/{id}", h.Get)
	mux.HandleFunc("PUT /customers/{id}", h.Update)
	mux.HandleFunc("DELETE /customers/{id}", h.Delete)
}

func decodeCustomer(w http.ResponseWriter, r *http.Request) (models.CustomerSnapshot, bool) {
	var in models.CustomerSnapshot
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return in, false
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return in, false
	}
	return in, true
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.GetCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nonNil(customers))
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCustomerByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if c == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCustomer(w, r)
	if !ok {
		return
	}
	c := models.Customer{Name: in.Name, Contact: in.Contact, Address: in.Address}
	if err := h.svc.SaveCustomer(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeCustomer(w, r)
	if !ok {
		return
	}
	c := models.Customer{ID: id, Name: in.Name, Contact: in.Contact, Address: in.Address}
	if err := h.svc.UpdateCustomer(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := h.svc.GetCustomerByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
