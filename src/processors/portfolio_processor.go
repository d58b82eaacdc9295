package processors

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/homedash/backend/src/models"
)

// PortfolioProcessor values holdings in a single reporting currency.
type PortfolioProcessor struct {
	reportingCurrency string
}

func NewPortfolioProcessor(reportingCurrency string) *PortfolioProcessor {
	return &PortfolioProcessor{reportingCurrency: strings.ToUpper(reportingCurrency)}
}

func (p *PortfolioProcessor) ReportingCurrency() string { return p.reportingCurrency }

// RequiredCurrencies lists the currencies that need a rate into the reporting
// currency to value the holdings with the given quotes.
func (p *PortfolioProcessor) RequiredCurrencies(holdings []models.StockHolding, quotes map[string]models.Quote) []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		c = strings.ToUpper(c)
		if c == "" || c == p.reportingCurrency || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, h := range holdings {
		add(h.GAKCurrency)
		if q, ok := quotes[strings.ToUpper(h.Symbol)]; ok {
			add(q.Currency)
		}
	}
	slices.Sort(out)
	return out
}

// Value computes market value and profit/loss per holding and in total.
// rates maps a currency code to the number of reporting currency units per
// unit of it. A holding with no quote, or whose currency has no rate, is
// marked PriceUnavailable and left out of the totals.
func (p *PortfolioProcessor) Value(holdings []models.StockHolding, quotes map[string]models.Quote, rates map[string]float64) models.PortfolioValuation {
	result := models.PortfolioValuation{
		ReportingCurrency: p.reportingCurrency,
		Holdings:          make([]models.HoldingValuation, 0, len(holdings)),
		UnpricedSymbols:   []string{},
	}

	totalMarket := decimal.Zero
	totalCost := decimal.Zero

	for _, h := range holdings {
		v := models.HoldingValuation{StockHolding: h}
		q, ok := quotes[strings.ToUpper(h.Symbol)]
		if !ok {
			v.PriceUnavailable = true
			result.Holdings = append(result.Holdings, v)
			result.UnpricedSymbols = append(result.UnpricedSymbols, h.Symbol)
			continue
		}

		priceCurrency := q.Currency
		if priceCurrency == "" {
			priceCurrency = h.GAKCurrency
		}
		v.CurrentPrice = q.Price
		v.PriceCurrency = strings.ToUpper(priceCurrency)
		v.PriceSource = q.Source

		priceRate, okPrice := p.rate(priceCurrency, rates)
		gakRate, okGak := p.rate(h.GAKCurrency, rates)
		if !okPrice || !okGak {
			v.PriceUnavailable = true
			result.Holdings = append(result.Holdings, v)
			result.UnpricedSymbols = append(result.UnpricedSymbols, h.Symbol)
			continue
		}

		shares := decimal.NewFromInt(int64(h.Shares))
		marketValue := decimal.NewFromFloat(q.Price).Mul(shares)
		marketReporting := marketValue.Mul(priceRate)
		cost := shares.Mul(decimal.NewFromFloat(h.GAK)).Mul(gakRate)
		profit := marketReporting.Sub(cost)

		v.MarketValue = toFloat(marketValue, 2)
		v.MarketValueReporting = toFloat(marketReporting, 2)
		v.AcquisitionCost = toFloat(cost, 2)
		v.ProfitLoss = toFloat(profit, 2)
		v.ProfitLossPercent, v.CostBasisMissing = percentOf(profit.Round(2), cost)
		v.MarketValueFormatted = FormatMoney(marketReporting, p.reportingCurrency)
		v.ProfitLossFormatted = FormatMoney(profit, p.reportingCurrency)

		totalMarket = totalMarket.Add(marketReporting)
		totalCost = totalCost.Add(cost)
		result.Holdings = append(result.Holdings, v)
	}

	totalProfit := totalMarket.Sub(totalCost)
	result.TotalMarketValue = toFloat(totalMarket, 2)
	result.TotalAcquisitionCost = toFloat(totalCost, 2)
	result.TotalProfitLoss = toFloat(totalProfit, 2)
	result.TotalProfitLossPercent, _ = percentOf(totalProfit.Round(2), totalCost)
	result.TotalFormatted = FormatMoney(totalMarket, p.reportingCurrency)
	return result
}

// ValuePortfolio is a convenience wrapper around PortfolioProcessor.Value.
func ValuePortfolio(holdings []models.StockHolding, quotes map[string]models.Quote, rates map[string]float64, reportingCurrency string) models.PortfolioValuation {
	return NewPortfolioProcessor(reportingCurrency).Value(holdings, quotes, rates)
}

func (p *PortfolioProcessor) rate(currency string, rates map[string]float64) (decimal.Decimal, bool) {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == p.reportingCurrency {
		return decimal.NewFromInt(1), true
	}
	r, ok := rates[currency]
	if !ok || r <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(r), true
}

// percentOf returns part/whole*100 rounded to 2 places. A zero whole yields
// 0 and true. A nonzero part never yields 0, so the sign always follows part.
func percentOf(part, whole decimal.Decimal) (float64, bool) {
	if whole.IsZero() {
		return 0, true
	}
	pct := part.Div(whole).Mul(hundred)
	if rounded := pct.Round(2); !rounded.IsZero() || part.IsZero() {
		return rounded.InexactFloat64(), false
	}
	return pct.InexactFloat64(), false
}
