// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"

	"github.com/username/homedash/backend/src/models"
)

// Define common service errors
var (
	ErrProviderUnavailable   = errors.New("quote provider unavailable")
	ErrQuoteNotFound         = errors.New("no quote available")
	ErrInvalidSymbol         = errors.New("invalid symbol")
	ErrCalendarNotConfigured = errors.New("calendar sync is not configured")
	ErrCalendarNotConnected  = errors.New("calendar is not connected")
	ErrInvalidOAuthState     = errors.New("invalid or expired oauth state")
)

// PriceService fetches latest stock quotes.
type PriceService interface {
	GetStockPrice(ctx context.Context, symbol string) (models.Quote, error)
	// GetStockPrices returns the quotes it could resolve, keyed by upper-case
	// symbol, and the symbols it could not.
	GetStockPrices(ctx context.Context, symbols []string) (map[string]models.Quote, []string)
	ClearCache()
}

// ExchangeRateService converts between currencies.
type ExchangeRateService interface {
	GetExchangeRate(ctx context.Context, from, to string) (models.ExchangeRate, error)
	ClearCache()
}
