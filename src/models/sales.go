package models

import (
	"strings"
	"time"
)

// Recipients a sale can be made on behalf of.
const (
	SoldForSelf  = "self"
	SoldForGitte = "gitte"
)

// SalesItem is one sold second-hand item.
type SalesItem struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ItemName     string    `json:"item_name"`
	SalePrice    float64   `json:"sale_price"`
	SalePlatform string    `json:"sale_platform"`
	SaleDate     string    `json:"sale_date"` // YYYY-MM-DD
	Category     string    `json:"category"`
	Condition    string    `json:"condition"`
	SoldFor      string    `json:"sold_for"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeSoldFor maps anything other than a known recipient to SoldForSelf.
func NormalizeSoldFor(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case SoldForGitte:
		return SoldForGitte
	default:
		return SoldForSelf
	}
}

// SalesStats is the aggregate view over a set of sales items.
type SalesStats struct {
	TotalSales   float64            `json:"totalSales"`
	TotalItems   int                `json:"totalItems"`
	Platforms    []string           `json:"platforms"`
	MonthlySales map[string]float64 `json:"monthlySales"` // YYYY-MM -> total
	BySoldFor    map[string]float64 `json:"bySoldFor"`
}
