package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	PositiveInt("quantity", 0, v)
	NonNegativeDecimal("price", decimal.RequireFromString("-0.01"), v)
	RangeDecimal("discount", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100), v)

	want := map[string]string{
		"name":     "required",
		"quantity": "must_be_positive",
		"price":    "must_not_be_negative",
		"discount": "out_of_range",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %s got %q", field, code, v[field])
		}
	}

	ok := Violations{}
	Required("name", "x", ok)
	PositiveInt("quantity", 1, ok)
	NonNegativeDecimal("price", decimal.Zero, ok)
	RangeDecimal("discount", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), ok)
	if !ok.Empty() {
		t.Fatalf("unexpected violations: %v", ok)
	}
}
