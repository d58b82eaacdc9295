package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/homedash/backend/src/models"
)

func TestAggregateSales(t *testing.T) {
	items := []models.SalesItem{
		{ItemName: "iPhone 12 Pro", SalePrice: 4500, SalePlatform: "DBA", SaleDate: "2024-05-03", SoldFor: "self"},
		{ItemName: "Bike", SalePrice: 1200.5, SalePlatform: "Facebook", SaleDate: "2024-05-20", SoldFor: "gitte"},
		{ItemName: "Lamp", SalePrice: 0.1, SalePlatform: "DBA", SaleDate: "2024-06-01", SoldFor: "unknown"},
		{ItemName: "Chair", SalePrice: 0.2, SalePlatform: "Tise", SaleDate: "someday"},
	}

	stats := AggregateSales(items)
	assert.InDelta(t, 5700.8, stats.TotalSales, 0.0001)
	assert.Equal(t, 4, stats.TotalItems)
	assert.Equal(t, []string{"DBA", "Facebook", "Tise"}, stats.Platforms)
	assert.InDelta(t, 5700.5, stats.MonthlySales["2024-05"], 0.0001)
	assert.InDelta(t, 0.1, stats.MonthlySales["2024-06"], 0.0001)
	assert.InDelta(t, 0.2, stats.MonthlySales[UnknownMonth], 0.0001)
	assert.InDelta(t, 4500.3, stats.BySoldFor[models.SoldForSelf], 0.0001)
	assert.InDelta(t, 1200.5, stats.BySoldFor[models.SoldForGitte], 0.0001)

	sum := 0.0
	for _, v := range stats.MonthlySales {
		sum += v
	}
	assert.InDelta(t, stats.TotalSales, sum, 0.0001)
}

func TestAggregateSalesSubCentPricesPartitionTotal(t *testing.T) {
	items := []models.SalesItem{
		{ItemName: "Pin", SalePrice: 0.005, SaleDate: "2024-05-01"},
		{ItemName: "Pin", SalePrice: 0.005, SaleDate: "2024-06-01"},
		{ItemName: "Pin", SalePrice: 0.005, SaleDate: "2024-07-01", SoldFor: "gitte"},
	}

	stats := AggregateSales(items)
	assert.InDelta(t, 0.03, stats.TotalSales, 1e-9)

	monthly := 0.0
	for _, v := range stats.MonthlySales {
		monthly += v
	}
	assert.InDelta(t, stats.TotalSales, monthly, 1e-9)

	bySoldFor := 0.0
	for _, v := range stats.BySoldFor {
		bySoldFor += v
	}
	assert.InDelta(t, stats.TotalSales, bySoldFor, 1e-9)
}

func TestAggregateSalesEmpty(t *testing.T) {
	stats := AggregateSales(nil)
	assert.Zero(t, stats.TotalSales)
	assert.Zero(t, stats.TotalItems)
	assert.Empty(t, stats.Platforms)
	assert.NotNil(t, stats.Platforms)
	assert.Empty(t, stats.MonthlySales)
}
