package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/processors"
)

func TestSalesMarkdown(t *testing.T) {
	items := []models.SalesItem{
		{ItemName: "Bike", SalePrice: 1200, SalePlatform: "DBA", SaleDate: "2024-03-02", SoldFor: models.SoldForSelf},
		{ItemName: "Lamp | shade", SalePrice: 300, SalePlatform: "Facebook", SaleDate: "2024-05-10", SoldFor: models.SoldForGitte},
	}
	stats := processors.NewSalesProcessor().Aggregate(items)

	md := SalesMarkdown(items, stats, "DKK")
	assert.Contains(t, md, "| 2024-05-10 | Lamp / shade |")
	assert.Less(t, strings.Index(md, "2024-05-10"), strings.Index(md, "2024-03-02"), "newest sale first")
	assert.Contains(t, md, "across 2 items")
	assert.Contains(t, md, "- 2024-03:")

	assert.Contains(t, SalesMarkdown(nil, models.SalesStats{}, "DKK"), "No sales recorded.")
}

func TestPortfolioMarkdownMarksMissingPrices(t *testing.T) {
	v := models.PortfolioValuation{
		ReportingCurrency: "DKK",
		Holdings: []models.HoldingValuation{
			{StockHolding: models.StockHolding{Symbol: "ZEAL", Shares: 10}, CurrentPrice: 745.5, PriceCurrency: "DKK", PriceSource: models.QuoteSourceFallback, MarketValueFormatted: "kr 7.455,00", ProfitLossFormatted: "kr 2.455,00", ProfitLossPercent: 49.1},
			{StockHolding: models.StockHolding{Symbol: "NOPE", Shares: 1}, PriceUnavailable: true},
		},
		TotalFormatted:  "kr 7.455,00",
		UnpricedSymbols: []string{"NOPE"},
	}

	md := PortfolioMarkdown(v)
	assert.Contains(t, md, "| ZEAL | 10 |")
	assert.Contains(t, md, "(49.10%)")
	assert.Contains(t, md, "| NOPE | 1 | n/a |")
	assert.Contains(t, md, "No price for: NOPE")
}

func TestLoanMarkdown(t *testing.T) {
	payments := []models.LoanPayment{
		{PaymentDate: "2024-02-01", Amount: 3500, InterestAmount: 750, PrincipalAmount: 2750, RemainingBalance: 197250},
		{PaymentDate: "2024-03-01", Amount: 3500, InterestAmount: 740, PrincipalAmount: 2760, RemainingBalance: 198000},
	}
	loan := models.CarLoan{Name: "Skoda", LoanAmount: 200000, RemainingAmount: 194490, TotalMonths: 72, PaidMonths: 2}
	summary := processors.NewLoanProcessor().Summarize(loan, payments)

	md := LoanMarkdown(summary, "DKK")
	assert.Contains(t, md, "## Skoda")
	assert.Contains(t, md, "2 of 72 paid")
	assert.Contains(t, md, "| 2024-02 |")
	assert.Contains(t, md, "balance rises")

	empty := LoanMarkdown(processors.NewLoanProcessor().Summarize(loan, nil), "DKK")
	assert.Contains(t, empty, "No payments recorded.")
}

func TestRenderKeepsContent(t *testing.T) {
	out := Render("Sales", "Some **bold** text about Bike sales.\n", 80)
	assert.Contains(t, out, "Sales")
	assert.Contains(t, out, "Bike")
}
