package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/diewo77/pos-ledger/httpx"
	"github.com/diewo77/pos-ledger/internal/services"
)

// writeServiceError maps service sentinels to HTTP status codes and error codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSaleNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCustomerNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidSale):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, services.ErrInvalidOrderDate):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_order_date", nil)
	case errors.Is(err, services.ErrInvalidDate):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
	case errors.Is(err, services.ErrInvoiceSequenceExhausted):
		httpx.JSONError(w, http.StatusConflict, "invoice_sequence_exhausted", nil)
	default:
		log.Printf("[http] internal error: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// pathID reads the {id} wildcard. It writes a 404 and returns false when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return 0, false
	}
	return uint(id), true
}
