package cli

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// rupees renders whole rupees with thousands grouping, e.g. ₹1,234.
var rupees = money.NewFormatter(0, ".", ",", "₹", "$1")

// Currency formats an amount rounded to the nearest rupee. Halves round away
// from zero.
func Currency(amount decimal.Decimal) string {
	return rupees.Format(amount.Round(0).IntPart())
}

// SignedCurrency formats like Currency with an explicit sign; zero has none.
func SignedCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	if rounded.IsPositive() {
		return "+" + Currency(rounded)
	}
	return Currency(rounded)
}

// Percent formats a percentage rounded to one decimal.
func Percent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}
