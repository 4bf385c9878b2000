package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders amount as Brazilian currency, e.g. "R$ 1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	out := "R$ " + grouped.String() + "," + cents
	if negative {
		out = "-" + out
	}
	return out
}
