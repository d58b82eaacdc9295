package models

import "time"

// CarLoan is a financed car with its repayment progress.
type CarLoan struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	LoanAmount      float64   `json:"loan_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	MonthlyPayment  float64   `json:"monthly_payment"`
	InterestRate    float64   `json:"interest_rate"`
	TotalMonths     int       `json:"total_months"`
	PaidMonths      int       `json:"paid_months"`
	RemainingMonths int       `json:"remaining_months"`
	StartDate       string    `json:"start_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoanPayment is one recorded instalment. Amount = InterestAmount + PrincipalAmount.
type LoanPayment struct {
	ID               int64     `json:"id"`
	LoanID           int64     `json:"loan_id"`
	UserID           int64     `json:"user_id"`
	PaymentDate      string    `json:"payment_date"`
	Amount           float64   `json:"amount"`
	InterestAmount   float64   `json:"interest_amount"`
	PrincipalAmount  float64   `json:"principal_amount"`
	RemainingBalance float64   `json:"remaining_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

// LoanRow is the tabular/chart representation of a payment.
type LoanRow struct {
	Month            string  `json:"month"` // YYYY-MM
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	RemainingBalance float64 `json:"remainingBalance"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
}

// LoanSummary bundles display rows with repayment totals.
type LoanSummary struct {
	Loan             CarLoan   `json:"loan"`
	Rows             []LoanRow `json:"rows"`
	TotalPaid        float64   `json:"totalPaid"`
	TotalInterest    float64   `json:"totalInterest"`
	TotalPrincipal   float64   `json:"totalPrincipal"`
	ProgressPercent  float64   `json:"progressPercent"`
	BalanceIncreases bool      `json:"balanceIncreases"`
}
