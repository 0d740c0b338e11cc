package models

import (
	"strings"
	"time"
)

// Customer represents a buyer. Customers are matched by (name, contact) when a
// sale is written, so two rows may share a name with different contacts.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"not null" json:"name"`
	Contact string `gorm:"not null;default:''" json:"contact,omitempty"` // phone or email
	Address string `gorm:"not null;default:''" json:"address,omitempty"`
}

// Snapshot copies the fields a sale keeps for historical display.
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{Name: c.Name, Contact: c.Contact, Address: c.Address}
}

// CustomerSnapshot is the customer as it was when a sale was written. It is
// stored on the sale row and never follows later edits of the customer.
type CustomerSnapshot struct {
	Name    string `gorm:"not null" json:"name"`
	Contact string `json:"contact,omitempty"`
	Address string `json:"address,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (s CustomerSnapshot) Normalize() CustomerSnapshot {
	return CustomerSnapshot{
		Name:    strings.TrimSpace(s.Name),
		Contact: strings.TrimSpace(s.Contact),
		Address: strings.TrimSpace(s.Address),
	}
}
