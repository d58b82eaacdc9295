package models

import "time"

// Quote sources. Demo means no provider is configured; fallback means the
// configured provider failed and a static value was used instead.
const (
	QuoteSourceLive     = "live"
	QuoteSourceCache    = "cache"
	QuoteSourceFallback = "fallback"
	QuoteSourceDemo     = "demo"
)

// StockHolding is one portfolio line: symbol, share count and cost basis.
type StockHolding struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Shares      int       `json:"shares"`
	GAK         float64   `json:"gak"` // average acquisition price per share in GAKCurrency
	GAKCurrency string    `json:"gak_currency"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Quote is the latest known price of a symbol in its native currency.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// ExchangeRate converts one unit of From into Rate units of To.
type ExchangeRate struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// HoldingValuation is a holding enriched with live price data.
// Values suffixed "Reporting" are in the portfolio reporting currency.
type HoldingValuation struct {
	StockHolding
	CurrentPrice         float64 `json:"currentPrice"`
	PriceCurrency        string  `json:"priceCurrency"`
	PriceSource          string  `json:"priceSource"`
	PriceUnavailable     bool    `json:"priceUnavailable"`
	MarketValue          float64 `json:"marketValue"` // native price currency
	MarketValueReporting float64 `json:"marketValueReporting"`
	AcquisitionCost      float64 `json:"acquisitionCost"` // reporting currency
	ProfitLoss           float64 `json:"profitLoss"`
	ProfitLossPercent    float64 `json:"profitLossPercent"`
	CostBasisMissing     bool    `json:"costBasisMissing"`
	MarketValueFormatted string  `json:"marketValueFormatted"`
	ProfitLossFormatted  string  `json:"profitLossFormatted"`
}

// PortfolioValuation aggregates holding valuations into reporting currency totals.
type PortfolioValuation struct {
	ReportingCurrency      string             `json:"reportingCurrency"`
	Holdings               []HoldingValuation `json:"holdings"`
	TotalMarketValue       float64            `json:"totalMarketValue"`
	TotalAcquisitionCost   float64            `json:"totalAcquisitionCost"`
	TotalProfitLoss        float64            `json:"totalProfitLoss"`
	TotalProfitLossPercent float64            `json:"totalProfitLossPercent"`
	TotalFormatted         string             `json:"totalFormatted"`
	UnpricedSymbols        []string           `json:"unpricedSymbols"`
}
