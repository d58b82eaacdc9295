package processors

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatMoney renders an amount in the display format of its currency,
// e.g. "kr 1.234,50" for DKK. Unknown codes fall back to "1234.50 XYZ".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// FormatMoneyFloat is FormatMoney for values already held as float64.
func FormatMoneyFloat(amount float64, currency string) string {
	return FormatMoney(decimal.NewFromFloat(amount), currency)
}

func toFloat(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
