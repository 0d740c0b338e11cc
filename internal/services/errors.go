package services

import "errors"

var (
	ErrNotInitialized    = errors.New("storage_not_initialized")
	ErrTransactionFailed = errors.New("transaction_failed")

	ErrSaleNotFound     = errors.New("sale_not_found")
	ErrProductNotFound  = errors.New("product_not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")

	// ErrInvalidSale is wrapped with the name of the offending field.
	ErrInvalidSale              = errors.New("invalid_sale")
	ErrInvalidOrderDate         = errors.New("invalid_order_date")
	ErrInvalidDate              = errors.New("invalid_date")
	ErrInvoiceSequenceExhausted = errors.New("invoice_sequence_exhausted")
)
