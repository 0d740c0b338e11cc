package models

import "time"

// StockReason tells why a product's stock moved.
type StockReason string

const (
	StockReasonSale        StockReason = "sale"
	StockReasonSaleRestore StockReason = "sale_restore"
)

// StockMovement records one adjustment of a product's stock quantity.
// Delta is negative when stock leaves, positive when it comes back.
type StockMovement struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ProductID uint        `gorm:"index;not null" json:"product_id"`
	SaleID    *uint       `gorm:"index" json:"sale_id,omitempty"`
	Delta     int         `gorm:"not null" json:"delta"`
	Reason    StockReason `gorm:"size:20;not null" json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}
