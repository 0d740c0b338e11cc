package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an inventory row whose stock is tracked by the sale writer.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string          `gorm:"not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	StockQty int             `gorm:"not null;default:0" json:"stock_qty"`
}

// Ref returns the line-item reference pointing at this product.
func (p *Product) Ref() ProductRef {
	return InventoryRef(p.ID)
}

// IsLowStock reports whether the stock quantity is at or under threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.StockQty <= threshold
}
