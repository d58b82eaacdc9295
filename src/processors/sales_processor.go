package processors

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/username/homedash/backend/src/models"
)

// UnknownMonth buckets sales whose date cannot be parsed.
const UnknownMonth = "unknown"

// SalesProcessor folds sales items into SalesStats.
type SalesProcessor struct{}

func NewSalesProcessor() *SalesProcessor { return &SalesProcessor{} }

// Aggregate sums prices in total, per month and per recipient. Monthly sums
// always add up to TotalSales.
func (p *SalesProcessor) Aggregate(items []models.SalesItem) models.SalesStats {
	total := decimal.Zero
	monthly := map[string]decimal.Decimal{}
	bySoldFor := map[string]decimal.Decimal{
		models.SoldForSelf:  decimal.Zero,
		models.SoldForGitte: decimal.Zero,
	}
	platforms := []string{}

	for _, item := range items {
		price := decimal.NewFromFloat(item.SalePrice).Round(2)
		total = total.Add(price)

		month := monthLabel(item.SaleDate)
		if month == item.SaleDate {
			month = UnknownMonth
		}
		monthly[month] = monthly[month].Add(price)

		soldFor := models.NormalizeSoldFor(item.SoldFor)
		bySoldFor[soldFor] = bySoldFor[soldFor].Add(price)

		if !slices.Contains(platforms, item.SalePlatform) {
			platforms = append(platforms, item.SalePlatform)
		}
	}
	slices.Sort(platforms)

	stats := models.SalesStats{
		TotalSales:   toFloat(total, 2),
		TotalItems:   len(items),
		Platforms:    platforms,
		MonthlySales: make(map[string]float64, len(monthly)),
		BySoldFor:    make(map[string]float64, len(bySoldFor)),
	}
	for k, v := range monthly {
		stats.MonthlySales[k] = toFloat(v, 2)
	}
	for k, v := range bySoldFor {
		stats.BySoldFor[k] = toFloat(v, 2)
	}
	return stats
}

// AggregateSales is a convenience wrapper around SalesProcessor.Aggregate.
func AggregateSales(items []models.SalesItem) models.SalesStats {
	return NewSalesProcessor().Aggregate(items)
}
