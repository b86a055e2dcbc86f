package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "₹"

// FormatCurrency renders an amount as a ₹-prefixed en-IN string with exactly
// two fraction digits, e.g. 123456.5 → "₹1,23,456.50". A nil amount renders
// the zero placeholder "₹0.00" rather than failing.
func FormatCurrency(amount *decimal.Decimal) string {
	if amount == nil {
		return currencySymbol + "0.00"
	}

	fixed := amount.Abs().StringFixed(2)
	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}
	return sign + currencySymbol + groupIndian(intPart) + "." + fracPart
}

// groupIndian inserts en-IN digit separators: the last three digits form one
// group, every two digits before that form another ("1234567" → "12,34,567").
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
