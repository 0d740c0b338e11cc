package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the precision every persisted amount is rounded to.
const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Sale is an invoice: a customer snapshot, its line items and totals.
// Total always equals Subtotal; discounts only exist at line level.
type Sale struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	InvoiceNumber string `gorm:"size:9;uniqueIndex" json:"invoice_number"`

	// CustomerID points at the customer row resolved when the sale was written.
	// It becomes nil if that customer is deleted later.
	CustomerID *uint            `json:"customer_id,omitempty"`
	Customer   CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	// Date is when the sale was entered; OrderDate is the business date and may be backdated.
	Date      time.Time `gorm:"not null;index" json:"date"`
	OrderDate time.Time `gorm:"not null" json:"order_date"`
	CreatedAt time.Time `json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
}

// ComputeTotals recomputes every line total, then Subtotal and Total.
func (s *Sale) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range s.Items {
		s.Items[i].LineTotal = s.Items[i].ComputeLineTotal()
		subtotal = subtotal.Add(s.Items[i].LineTotal)
	}
	s.Subtotal = subtotal.Round(moneyPlaces)
	s.Total = s.Subtotal
}

// SaleItem is one product-and-quantity entry of a sale. ProductName and
// UnitPrice are copied at sale time so the row stays readable after the
// product changes or disappears.
type SaleItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SaleID    uint      `gorm:"index;not null" json:"sale_id"`
	CreatedAt time.Time `json:"created_at"`

	ProductID   ProductRef      `gorm:"type:text;index" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"` // percent, 0..100
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// ComputeLineTotal returns quantity × unit price × (1 − discount/100), rounded to cents.
func (it *SaleItem) ComputeLineTotal() decimal.Decimal {
	gross := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	if it.Discount.IsPositive() {
		gross = gross.Mul(hundred.Sub(it.Discount)).Div(hundred)
	}
	return gross.Round(moneyPlaces)
}

// IsCustom reports whether the item has no inventory row behind it.
func (it *SaleItem) IsCustom() bool {
	return it.ProductID.IsCustom()
}
