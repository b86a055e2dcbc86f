package core_test

import (
	"testing"

	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount *decimal.Decimal
		want   string
	}{
		{name: "nil renders zero placeholder", amount: nil, want: "₹0.00"},
		{name: "zero", amount: decPtr("0"), want: "₹0.00"},
		{name: "two fraction digits always", amount: decPtr("5"), want: "₹5.00"},
		{name: "rounds to two digits", amount: decPtr("12.345"), want: "₹12.35"},
		{name: "thousand group", amount: decPtr("1234.5"), want: "₹1,234.50"},
		{name: "lakh grouping", amount: decPtr("123456.78"), want: "₹1,23,456.78"},
		{name: "crore grouping", amount: decPtr("12345678.9"), want: "₹1,23,45,678.90"},
		{name: "negative", amount: decPtr("-3000"), want: "-₹3,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.FormatCurrency(tt.amount); got != tt.want {
				t.Errorf("FormatCurrency = %q, want %q", got, tt.want)
			}
		})
	}
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
