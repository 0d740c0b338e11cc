package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diewo77/pos-ledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxInvoiceRetries bounds how often a sale write is replayed after losing an
// invoice number race against another writer.
const maxInvoiceRetries = 3

var maxDiscount = decimal.NewFromInt(100)

// SaleService writes sales, their items and the matching stock changes as one
// unit, and reads them back.
type SaleService struct {
	db    *gorm.DB
	loc   *time.Location
	now   func() time.Time
	stock StockLedger
}

// NewSaleService returns a service whose invoice days follow loc. A nil loc means UTC.
func NewSaleService(db *gorm.DB, loc *time.Location) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleService{db: db, loc: loc, now: time.Now}
}

// SaveSale is kept for callers that use the older name.
func (s *SaleService) SaveSale(ctx context.Context, sale *models.Sale) (uint, error) {
	return s.CreateSale(ctx, sale)
}

// CreateSale validates sale, assigns its invoice number and writes it with its
// items and stock decrements in a single transaction. On success sale.ID,
// sale.InvoiceNumber and sale.CustomerID are set.
func (s *SaleService) CreateSale(ctx context.Context, sale *models.Sale) (uint, error) {
	if s.db == nil {
		return 0, ErrNotInitialized
	}
	if err := validateSale(sale); err != nil {
		return 0, err
	}
	s.prepare(sale)

	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.insertSale(tx, sale)
		})
		if err == nil {
			log.Printf("[sales] created sale %d invoice=%s total=%s", sale.ID, sale.InvoiceNumber, sale.Total.StringFixed(2))
			return sale.ID, nil
		}
		conflict := sale.InvoiceNumber
		resetWrite(sale)
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxInvoiceRetries {
			return 0, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
		}
		log.Printf("[sales] invoice number %s already taken, retrying (%d/%d)", conflict, attempt+1, maxInvoiceRetries)
	}
}

func (s *SaleService) insertSale(tx *gorm.DB, sale *models.Sale) error {
	customer, err := resolveCustomer(tx, sale.Customer)
	if err != nil {
		return err
	}
	sale.CustomerID = &customer.ID

	number, err := NextInvoiceNumber(tx, sale.OrderDate, s.loc)
	if err != nil {
		return err
	}
	sale.InvoiceNumber = number

	if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return s.insertItems(tx, sale)
}

// insertItems writes each item and takes its quantity out of stock.
func (s *SaleService) insertItems(tx *gorm.DB, sale *models.Sale) error {
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		if err := tx.Create(&sale.Items[i]).Error; err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
		if err := s.stock.Apply(tx, sale.ID, sale.Items[i:i+1]); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSale replaces the customer, items and totals of an existing sale. Old
// quantities go back to stock before the new ones are taken out. The invoice
// number and Date (the entry time) never change.
func (s *SaleService) UpdateSale(ctx context.Context, sale *models.Sale) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	if sale.ID == 0 {
		return ErrSaleNotFound
	}
	if err := validateSale(sale); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Sale
		if err := tx.Preload("Items").First(&existing, sale.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if err := s.stock.Restore(tx, existing.ID, existing.Items); err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", existing.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return fmt.Errorf("delete old items: %w", err)
		}

		sale.Date = existing.Date
		if sale.OrderDate.IsZero() {
			sale.OrderDate = existing.OrderDate
		}
		s.prepare(sale)
		sale.InvoiceNumber = existing.InvoiceNumber
		sale.CreatedAt = existing.CreatedAt

		customer, err := resolveCustomer(tx, sale.Customer)
		if err != nil {
			return err
		}
		sale.CustomerID = &customer.ID

		res := tx.Model(&models.Sale{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"customer_id":      customer.ID,
			"customer_name":    sale.Customer.Name,
			"customer_contact": sale.Customer.Contact,
			"customer_address": sale.Customer.Address,
			"subtotal":         sale.Subtotal,
			"total":            sale.Total,
			"order_date":       sale.OrderDate,
		})
		if res.Error != nil {
			return fmt.Errorf("update sale: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrSaleNotFound
		}
		return s.insertItems(tx, sale)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	log.Printf("[sales] updated sale %d invoice=%s total=%s", sale.ID, sale.InvoiceNumber, sale.Total.StringFixed(2))
	return nil
}

// DeleteSale removes a sale and its items and puts their quantities back into stock.
func (s *SaleService) DeleteSale(ctx context.Context, id uint) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Sale
		if err := tx.Preload("Items").First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if err := s.stock.Restore(tx, existing.ID, existing.Items); err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", existing.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, existing.ID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	log.Printf("[sales] deleted sale %d", id)
	return nil
}

// GetSaleByID returns the sale with its items, or nil when no sale has that id.
func (s *SaleService) GetSaleByID(ctx context.Context, id uint) (*models.Sale, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Items", orderItems).First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSales returns every sale, newest first.
func (s *SaleService) GetSales(ctx context.Context) ([]models.Sale, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.findSales(s.db.WithContext(ctx))
}

// GetSalesByDateRange returns the sales entered between start and end, both inclusive.
func (s *SaleService) GetSalesByDateRange(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.findSales(s.db.WithContext(ctx).Where("date >= ? AND date <= ?", start.UTC(), end.UTC()))
}

// Revenue sums the totals of the sales entered between start and end, both inclusive.
func (s *SaleService) Revenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if s.db == nil {
		return decimal.Zero, ErrNotInitialized
	}
	var totals []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Sale{}).
		Where("date >= ? AND date <= ?", start.UTC(), end.UTC()).
		Pluck("total", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, totals...).Round(2), nil
}

func (s *SaleService) findSales(q *gorm.DB) ([]models.Sale, error) {
	var sales []models.Sale
	err := q.Where("typeof(id) = 'integer'").
		Preload("Items", orderItems).
		Order("date DESC").Order("id DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// prepare fills defaults and recomputes every amount. Stored times are UTC so
// that text comparison in SQLite matches time order.
func (s *SaleService) prepare(sale *models.Sale) {
	sale.Customer = sale.Customer.Normalize()
	if sale.Date.IsZero() {
		sale.Date = s.now()
	}
	if sale.OrderDate.IsZero() {
		sale.OrderDate = sale.Date
	}
	sale.Date = sale.Date.UTC()
	sale.OrderDate = sale.OrderDate.UTC()
	for i := range sale.Items {
		it := &sale.Items[i]
		it.ID = 0
		it.ProductID = models.ProductRef(strings.TrimSpace(string(it.ProductID)))
		if it.ProductID == "" {
			it.ProductID = models.NewCustomRef()
		}
		it.ProductName = strings.TrimSpace(it.ProductName)
	}
	sale.ComputeTotals()
}

// resetWrite clears what a rolled back attempt left on the sale.
func resetWrite(sale *models.Sale) {
	sale.ID = 0
	sale.InvoiceNumber = ""
	sale.CustomerID = nil
	sale.CreatedAt = time.Time{}
	for i := range sale.Items {
		sale.Items[i].ID = 0
		sale.Items[i].SaleID = 0
		sale.Items[i].CreatedAt = time.Time{}
	}
}

func validateSale(sale *models.Sale) error {
	if sale == nil {
		return fmt.Errorf("%w: sale", ErrInvalidSale)
	}
	if strings.TrimSpace(sale.Customer.Name) == "" {
		return fmt.Errorf("%w: customer.name", ErrInvalidSale)
	}
	if len(sale.Items) == 0 {
		return fmt.Errorf("%w: items", ErrInvalidSale)
	}
	for i, it := range sale.Items {
		switch {
		case strings.TrimSpace(it.ProductName) == "":
			return fmt.Errorf("%w: items[%d].product_name", ErrInvalidSale, i)
		case it.Quantity <= 0:
			return fmt.Errorf("%w: items[%d].quantity", ErrInvalidSale, i)
		case it.UnitPrice.IsNegative():
			return fmt.Errorf("%w: items[%d].unit_price", ErrInvalidSale, i)
		case it.Discount.IsNegative() || it.Discount.GreaterThan(maxDiscount):
			return fmt.Errorf("%w: items[%d].discount", ErrInvalidSale, i)
		}
	}
	return nil
}

// resolveCustomer finds the customer with the snapshot's name and contact, or
// creates one.
func resolveCustomer(tx *gorm.DB, snap models.CustomerSnapshot) (*models.Customer, error) {
	var c models.Customer
	err := tx.Where("name = ? AND contact = ?", snap.Name, snap.Contact).Order("id").First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c = models.Customer{Name: snap.Name, Contact: snap.Contact, Address: snap.Address}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}
