package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/pos-ledger/internal/models"
	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// SaveProduct inserts p and sets its ID.
func (s *ProductService) SaveProduct(ctx context.Context, p *models.Product) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	p.ID = 0
	p.Name = strings.TrimSpace(p.Name)
	return s.db.WithContext(ctx).Create(p).Error
}

// GetProducts returns every product ordered by name.
func (s *ProductService) GetProducts(ctx context.Context) ([]models.Product, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var products []models.Product
	err := s.db.WithContext(ctx).Where("typeof(id) = 'integer'").Order("name").Order("id").Find(&products).Error
	return products, err
}

// SearchProducts returns products whose name contains term, ignoring case.
func (s *ProductService) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return s.GetProducts(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("typeof(id) = 'integer' AND lower(name) LIKE ? ESCAPE '\\'", pattern).
		Order("name").Order("id").
		Find(&products).Error
	return products, err
}

// GetProductByID returns nil when no product has that id.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct overwrites the name, price and stock of p.ID.
func (s *ProductService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":      strings.TrimSpace(p.Name),
		"price":     p.Price,
		"stock_qty": p.StockQty,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, p.ID)
	}
	return nil
}

// DeleteProduct removes the product row. Sale items that referenced it keep
// their copied name and price.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return nil
}

// GetLowStockProducts returns products with stock at or under threshold,
// emptiest first.
func (s *ProductService) GetLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("typeof(id) = 'integer' AND stock_qty <= ?", threshold).
		Order("stock_qty").Order("name").
		Find(&products).Error
	return products, err
}

// StockMovements lists the stock history of a product, newest first.
func (s *ProductService) StockMovements(ctx context.Context, productID uint) ([]models.StockMovement, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Find(&movements).Error
	return movements, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
