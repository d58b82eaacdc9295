package processors

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/homedash/backend/src/models"
)

// ErrInconsistentLoan is returned when loan or payment figures contradict each other.
var ErrInconsistentLoan = errors.New("inconsistent loan figures")

var paymentTolerance = decimal.NewFromFloat(0.01)

// LoanProcessor turns loans and their recorded payments into display rows.
type LoanProcessor struct{}

func NewLoanProcessor() *LoanProcessor { return &LoanProcessor{} }

// NormalizeLoan derives RemainingMonths from TotalMonths and PaidMonths.
func (p *LoanProcessor) NormalizeLoan(loan *models.CarLoan) error {
	if loan.TotalMonths < 0 || loan.PaidMonths < 0 {
		return fmt.Errorf("%w: month counts must not be negative", ErrInconsistentLoan)
	}
	if loan.PaidMonths > loan.TotalMonths {
		return fmt.Errorf("%w: paid_months (%d) exceeds total_months (%d)", ErrInconsistentLoan, loan.PaidMonths, loan.TotalMonths)
	}
	loan.RemainingMonths = loan.TotalMonths - loan.PaidMonths
	return nil
}

// NormalizePayment fills in the principal portion when it was not supplied,
// otherwise checks amount = interest + principal within one cent.
func (p *LoanProcessor) NormalizePayment(payment *models.LoanPayment, principalSupplied bool) error {
	amount := decimal.NewFromFloat(payment.Amount)
	interest := decimal.NewFromFloat(payment.InterestAmount)
	if interest.IsNegative() {
		return fmt.Errorf("%w: interest_amount must not be negative", ErrInconsistentLoan)
	}
	if interest.GreaterThan(amount) {
		return fmt.Errorf("%w: interest_amount exceeds amount", ErrInconsistentLoan)
	}
	if !principalSupplied {
		payment.PrincipalAmount = toFloat(amount.Sub(interest), 2)
		return nil
	}
	principal := decimal.NewFromFloat(payment.PrincipalAmount)
	if amount.Sub(interest.Add(principal)).Abs().GreaterThan(paymentTolerance) {
		return fmt.Errorf("%w: amount %s != interest %s + principal %s", ErrInconsistentLoan, amount, interest, principal)
	}
	return nil
}

// Rows maps payments to display rows ordered by payment date. Balances are
// taken as recorded.
func (p *LoanProcessor) Rows(payments []models.LoanPayment) []models.LoanRow {
	sorted := make([]models.LoanPayment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PaymentDate < sorted[j].PaymentDate
	})

	rows := make([]models.LoanRow, 0, len(sorted))
	for _, pay := range sorted {
		rows = append(rows, models.LoanRow{
			Month:            monthLabel(pay.PaymentDate),
			Date:             pay.PaymentDate,
			Amount:           pay.Amount,
			RemainingBalance: pay.RemainingBalance,
			Interest:         pay.InterestAmount,
			Principal:        pay.PrincipalAmount,
		})
	}
	return rows
}

// Summarize bundles the rows with repayment totals. BalanceIncreases flags a
// recorded balance that rose between two successive payments.
func (p *LoanProcessor) Summarize(loan models.CarLoan, payments []models.LoanPayment) models.LoanSummary {
	rows := p.Rows(payments)
	paid, interest, principal := decimal.Zero, decimal.Zero, decimal.Zero
	increases := false
	for i, r := range rows {
		paid = paid.Add(decimal.NewFromFloat(r.Amount))
		interest = interest.Add(decimal.NewFromFloat(r.Interest))
		principal = principal.Add(decimal.NewFromFloat(r.Principal))
		if i > 0 && r.RemainingBalance > rows[i-1].RemainingBalance {
			increases = true
		}
	}

	progress := 0.0
	if loan.LoanAmount > 0 {
		repaid := decimal.NewFromFloat(loan.LoanAmount).Sub(decimal.NewFromFloat(loan.RemainingAmount))
		progress = toFloat(repaid.Div(decimal.NewFromFloat(loan.LoanAmount)).Mul(hundred), 2)
		progress = max(0, min(progress, 100))
	}

	return models.LoanSummary{
		Loan:             loan,
		Rows:             rows,
		TotalPaid:        toFloat(paid, 2),
		TotalInterest:    toFloat(interest, 2),
		TotalPrincipal:   toFloat(principal, 2),
		ProgressPercent:  progress,
		BalanceIncreases: increases,
	}
}

// LoanRows is a convenience wrapper around LoanProcessor.Rows.
func LoanRows(payments []models.LoanPayment) []models.LoanRow {
	return NewLoanProcessor().Rows(payments)
}

func monthLabel(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("2006-01")
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Format("2006-01")
	}
	return date
}
