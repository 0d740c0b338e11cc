package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/pos-ledger/internal/models"
	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) SaveCustomer(ctx context.Context, c *models.Customer) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	c.ID = 0
	normalizeCustomer(c)
	return s.db.WithContext(ctx).Create(c).Error
}

// GetCustomers returns every customer ordered by name.
func (s *CustomerService) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var customers []models.Customer
	err := s.db.WithContext(ctx).Where("typeof(id) = 'integer'").Order("name").Order("id").Find(&customers).Error
	return customers, err
}

// GetCustomerByID returns nil when no customer has that id.
func (s *CustomerService) GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer edits the customer row only; sales keep the snapshot taken
// when they were written.
func (s *CustomerService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	normalizeCustomer(c)
	res := s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":    c.Name,
		"contact": c.Contact,
		"address": c.Address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrCustomerNotFound, c.ID)
	}
	return nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}
	return nil
}

func normalizeCustomer(c *models.Customer) {
	snap := c.Snapshot().Normalize()
	c.Name, c.Contact, c.Address = snap.Name, snap.Contact, snap.Address
}
