package services

import (
	"context"

	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/processors"
)

// PortfolioService values holdings with live quotes and exchange rates.
type PortfolioService struct {
	prices    PriceService
	fx        ExchangeRateService
	processor *processors.PortfolioProcessor
}

func NewPortfolioService(prices PriceService, fx ExchangeRateService, reportingCurrency string) *PortfolioService {
	return &PortfolioService{
		prices:    prices,
		fx:        fx,
		processor: processors.NewPortfolioProcessor(reportingCurrency),
	}
}

func (s *PortfolioService) ReportingCurrency() string { return s.processor.ReportingCurrency() }

// Value never fails: symbols without a price and currencies without a rate
// are reported on the valuation instead.
func (s *PortfolioService) Value(ctx context.Context, holdings []models.StockHolding) models.PortfolioValuation {
	ctxLogger := logger.FromContext(ctx)

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes, unavailable := s.prices.GetStockPrices(ctx, symbols)
	if len(unavailable) > 0 {
		ctxLogger.Warn("Some holdings have no price", "symbols", unavailable)
	}

	rates := map[string]float64{}
	for _, currency := range s.processor.RequiredCurrencies(holdings, quotes) {
		fx, err := s.fx.GetExchangeRate(ctx, currency, s.processor.ReportingCurrency())
		if err != nil {
			ctxLogger.Warn("No exchange rate for currency", "currency", currency, "error", err)
			continue
		}
		rates[currency] = fx.Rate
	}
	return s.processor.Value(holdings, quotes, rates)
}
