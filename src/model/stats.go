package model

import (
	"database/sql"
	"time"
)

// AdminStats summarises usage across all users.
type AdminStats struct {
	TotalUsers       int     `json:"totalUsers"`
	AdminUsers       int     `json:"adminUsers"`
	MfaEnabledUsers  int     `json:"mfaEnabledUsers"`
	NewUsersLast30d  int     `json:"newUsersLast30Days"`
	ActiveSessions   int     `json:"activeSessions"`
	TotalLogins      int     `json:"totalLogins"`
	SalesItems       int     `json:"salesItems"`
	TotalSalesAmount float64 `json:"totalSalesAmount"`
	CarLoans         int     `json:"carLoans"`
	LoanPayments     int     `json:"loanPayments"`
	StockHoldings    int     `json:"stockHoldings"`
	CalendarsLinked  int     `json:"calendarsLinked"`
}

// GetAdminStats runs the aggregate queries behind the admin dashboard.
func GetAdminStats(db *sql.DB) (*AdminStats, error) {
	var s AdminStats
	since := time.Now().UTC().AddDate(0, 0, -30)

	err := db.QueryRow(`
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN mfa_enabled THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(login_count), 0)
	FROM users`).Scan(&s.TotalUsers, &s.AdminUsers, &s.MfaEnabledUsers, &s.TotalLogins)
	if err != nil {
		return nil, err
	}

	users, err := ListUsers(db)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.CreatedAt.After(since) {
			s.NewUsersLast30d++
		}
	}

	if s.ActiveSessions, err = CountActiveSessions(db); err != nil {
		return nil, err
	}

	err = db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(sale_price), 0) FROM sales_items`).Scan(&s.SalesItems, &s.TotalSalesAmount)
	if err != nil {
		return nil, err
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM car_loans`, &s.CarLoans},
		{`SELECT COUNT(*) FROM car_loan_payments`, &s.LoanPayments},
		{`SELECT COUNT(*) FROM stock_holdings`, &s.StockHoldings},
		{`SELECT COUNT(*) FROM calendar_tokens`, &s.CalendarsLinked},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
