package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProductRef_InventoryID(t *testing.T) {
	tests := []struct {
		name   string
		ref    ProductRef
		wantID uint
		wantOK bool
	}{
		{"numeric", "42", 42, true},
		{"leading zeros", "007", 7, true},
		{"zero", "0", 0, false},
		{"empty", "", 0, false},
		{"custom", "custom-abc", 0, false},
		{"negative", "-3", 0, false},
		{"decimal", "1.5", 0, false},
		{"spaces", " 4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.ref.InventoryID()
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("InventoryID() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
			if tt.ref.IsCustom() == tt.wantOK {
				t.Errorf("IsCustom() = %v, want %v", tt.ref.IsCustom(), !tt.wantOK)
			}
		})
	}
}

func TestProductRef_JSON(t *testing.T) {
	var item struct {
		A ProductRef `json:"a"`
		B ProductRef `json:"b"`
		C ProductRef `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12, "b": "gift-wrap", "c": "15"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.A != "12" || item.B != "gift-wrap" || item.C != "15" {
		t.Fatalf("unexpected refs: %#v", item)
	}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(out), `{"a":12,"b":"gift-wrap","c":15}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	for _, bad := range []string{`-1`, `1.5`, `0`} {
		var r ProductRef
		if err := json.Unmarshal([]byte(bad), &r); err == nil {
			t.Errorf("expected error for %s, got ref %q", bad, r)
		}
	}
}

func TestProductRef_Scan(t *testing.T) {
	var r ProductRef
	if err := r.Scan(int64(9)); err != nil || r != "9" {
		t.Fatalf("Scan(int64) = %q, %v", r, err)
	}
	if err := r.Scan([]byte("custom-x")); err != nil || r != "custom-x" {
		t.Fatalf("Scan([]byte) = %q, %v", r, err)
	}
	if err := r.Scan(nil); err != nil || r != "" {
		t.Fatalf("Scan(nil) = %q, %v", r, err)
	}
	if err := r.Scan(true); err == nil {
		t.Fatal("expected error for bool")
	}
}

func TestNewCustomRef(t *testing.T) {
	a, b := NewCustomRef(), NewCustomRef()
	if a == b {
		t.Fatal("expected distinct custom refs")
	}
	if !a.IsCustom() || !strings.HasPrefix(string(a), "custom-") {
		t.Fatalf("unexpected custom ref %q", a)
	}
}

func TestSaleItem_ComputeLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		qty      int
		price    string
		discount string
		want     string
	}{
		{"no discount", 3, "10.00", "0", "30.00"},
		{"10 percent", 2, "15.50", "10", "27.90"},
		{"full discount", 4, "9.99", "100", "0"},
		{"rounding", 1, "0.333", "0", "0.33"},
		{"odd percent", 3, "19.99", "12.5", "52.47"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := SaleItem{Quantity: tt.qty, UnitPrice: dec(tt.price), Discount: dec(tt.discount)}
			if got := it.ComputeLineTotal(); !got.Equal(dec(tt.want)) {
				t.Errorf("ComputeLineTotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSale_ComputeTotals(t *testing.T) {
	sale := &Sale{
		Items: []SaleItem{
			{Quantity: 3, UnitPrice: dec("10.00"), LineTotal: dec("999")}, // stale line total is replaced
			{Quantity: 1, UnitPrice: dec("5.00"), Discount: dec("50")},
			{ProductID: "custom-1", Quantity: 2, UnitPrice: dec("1.25")},
		},
	}
	sale.ComputeTotals()

	if !sale.Items[0].LineTotal.Equal(dec("30")) {
		t.Errorf("line 0 = %s, want 30", sale.Items[0].LineTotal)
	}
	if !sale.Subtotal.Equal(dec("35")) {
		t.Errorf("Subtotal = %s, want 35", sale.Subtotal)
	}
	if !sale.Total.Equal(sale.Subtotal) {
		t.Errorf("Total %s != Subtotal %s", sale.Total, sale.Subtotal)
	}
}

func TestCustomerSnapshot(t *testing.T) {
	c := &Customer{Name: "Ana", Contact: "0812", Address: "Jl. Mawar 1"}
	s := c.Snapshot()
	if s.Name != "Ana" || s.Contact != "0812" || s.Address != "Jl. Mawar 1" {
		t.Fatalf("unexpected snapshot %#v", s)
	}
	n := CustomerSnapshot{Name: "  Ana ", Contact: " 0812"}.Normalize()
	if n.Name != "Ana" || n.Contact != "0812" {
		t.Fatalf("Normalize() = %#v", n)
	}
}

func TestProduct_IsLowStock(t *testing.T) {
	p := &Product{ID: 3, StockQty: 5}
	if !p.IsLowStock(5) || p.IsLowStock(4) {
		t.Fatalf("IsLowStock boundaries wrong for stock %d", p.StockQty)
	}
	if p.Ref() != "3" {
		t.Fatalf("Ref() = %q", p.Ref())
	}
}
