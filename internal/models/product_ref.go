package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// customRefPrefix marks generated references for ad hoc line items.
const customRefPrefix = "custom-"

// ProductRef identifies what a sale item sold. A ref made only of digits is the
// id of an inventory product; anything else is a custom product that has no
// inventory row and is never subject to stock adjustment.
type ProductRef string

// InventoryRef builds the ref of an inventory product.
func InventoryRef(id uint) ProductRef {
	return ProductRef(strconv.FormatUint(uint64(id), 10))
}

// NewCustomRef returns a fresh reference for a custom product.
func NewCustomRef() ProductRef {
	return ProductRef(customRefPrefix + uuid.NewString())
}

// InventoryID returns the product id when the ref points at an inventory row.
func (r ProductRef) InventoryID() (uint, bool) {
	s := string(r)
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IsCustom reports whether the ref is not backed by an inventory row.
func (r ProductRef) IsCustom() bool {
	_, ok := r.InventoryID()
	return !ok
}

// MarshalJSON writes inventory refs as numbers and custom refs as strings.
func (r ProductRef) MarshalJSON() ([]byte, error) {
	if id, ok := r.InventoryID(); ok {
		return []byte(strconv.FormatUint(uint64(id), 10)), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ProductRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product_id: %w", err)
	}
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("product_id must be a positive integer or a string: %s", n)
	}
	*r = InventoryRef(uint(id))
	return nil
}

// Value implements driver.Valuer; refs are persisted as text.
func (r ProductRef) Value() (driver.Value, error) {
	return string(r), nil
}

// Scan implements sql.Scanner. SQLite may hand back integers for digit-only
// text stored before the column was declared TEXT.
func (r *ProductRef) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = ""
	case string:
		*r = ProductRef(v)
	case []byte:
		*r = ProductRef(string(v))
	case int64:
		*r = ProductRef(strconv.FormatInt(v, 10))
	case float64:
		*r = ProductRef(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported product ref type %T", src)
	}
	return nil
}
