package services

import (
	"fmt"
	"log"

	"github.com/diewo77/pos-ledger/internal/models"
	"gorm.io/gorm"
)

// StockLedger adjusts inventory quantities for sale items and records every
// adjustment as a stock movement. It only works inside a caller's transaction.
type StockLedger struct{}

// Apply takes the items' quantities out of stock.
func (StockLedger) Apply(tx *gorm.DB, saleID uint, items []models.SaleItem) error {
	return adjustStock(tx, saleID, items, -1, models.StockReasonSale)
}

// Restore puts the items' quantities back into stock.
func (StockLedger) Restore(tx *gorm.DB, saleID uint, items []models.SaleItem) error {
	return adjustStock(tx, saleID, items, 1, models.StockReasonSaleRestore)
}

func adjustStock(tx *gorm.DB, saleID uint, items []models.SaleItem, sign int, reason models.StockReason) error {
	for _, it := range items {
		productID, ok := it.ProductID.InventoryID()
		if !ok {
			continue
		}
		delta := sign * it.Quantity
		res := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("adjust stock of product %d: %w", productID, res.Error)
		}
		if res.RowsAffected == 0 {
			log.Printf("[stock] product %d not found, skipping %s adjustment of %d for sale %d", productID, reason, delta, saleID)
			continue
		}
		sid := saleID
		mv := models.StockMovement{ProductID: productID, SaleID: &sid, Delta: delta, Reason: reason}
		if err := tx.Create(&mv).Error; err != nil {
			return fmt.Errorf("record stock movement: %w", err)
		}
	}
	return nil
}
