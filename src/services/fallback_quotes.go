package services

import (
	"strings"

	"github.com/username/homedash/backend/src/models"
)

// Static quotes served when no provider is configured or the provider fails.
var fallbackQuotes = map[string]models.Quote{
	"ZEAL":   {Symbol: "ZEAL", Price: 745.50, Currency: "DKK", Change: 4.50, ChangePercent: 0.61},
	"TSLA":   {Symbol: "TSLA", Price: 248.50, Currency: "USD", Change: -3.20, ChangePercent: -1.27},
	"NOVO-B": {Symbol: "NOVO-B", Price: 712.40, Currency: "DKK", Change: 8.10, ChangePercent: 1.15},
	"AAPL":   {Symbol: "AAPL", Price: 189.30, Currency: "USD", Change: 1.10, ChangePercent: 0.58},
	"MSFT":   {Symbol: "MSFT", Price: 415.10, Currency: "USD", Change: 2.35, ChangePercent: 0.57},
	"NVDA":   {Symbol: "NVDA", Price: 118.20, Currency: "USD", Change: -0.90, ChangePercent: -0.76},
}

// Units of DKK per unit of currency.
var fallbackDKKRates = map[string]float64{
	"DKK": 1,
	"USD": 6.85,
	"EUR": 7.46,
	"SEK": 0.65,
	"NOK": 0.64,
	"GBP": 8.72,
}

func fallbackQuote(symbol string) (models.Quote, bool) {
	q, ok := fallbackQuotes[strings.ToUpper(symbol)]
	return q, ok
}

// fallbackRate crosses through DKK so any pair of known currencies resolves.
func fallbackRate(from, to string) (float64, bool) {
	f, okFrom := fallbackDKKRates[strings.ToUpper(from)]
	t, okTo := fallbackDKKRates[strings.ToUpper(to)]
	if !okFrom || !okTo {
		return 0, false
	}
	return f / t, true
}
