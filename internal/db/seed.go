package db

import (
	"errors"

	"github.com/diewo77/pos-ledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts a small demo catalogue. Products already present by name are
// left alone, so running it twice changes nothing.
func Seed(db *gorm.DB) error {
	baseProducts := []models.Product{
		{Name: "Widget", Price: decimal.RequireFromString("10.00"), StockQty: 20},
		{Name: "Gadget", Price: decimal.RequireFromString("24.50"), StockQty: 8},
		{Name: "Cable USB-C", Price: decimal.RequireFromString("4.99"), StockQty: 50},
	}
	for _, p := range baseProducts {
		var existing models.Product
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
