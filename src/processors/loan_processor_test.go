package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/models"
)

func TestLoanRowsSortedByDate(t *testing.T) {
	payments := []models.LoanPayment{
		{PaymentDate: "2024-03-01", Amount: 3000, InterestAmount: 400, PrincipalAmount: 2600, RemainingBalance: 194800},
		{PaymentDate: "2024-01-01", Amount: 3000, InterestAmount: 420, PrincipalAmount: 2580, RemainingBalance: 200000},
		{PaymentDate: "2024-02-01", Amount: 3000, InterestAmount: 410, PrincipalAmount: 2590, RemainingBalance: 197410},
	}

	rows := LoanRows(payments)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{rows[0].Month, rows[1].Month, rows[2].Month})
	assert.Equal(t, 200000.0, rows[0].RemainingBalance)
	assert.Equal(t, 420.0, rows[0].Interest)
	assert.Equal(t, 2580.0, rows[0].Principal)
	assert.Equal(t, "2024-03-01", payments[0].PaymentDate, "input must not be reordered")
}

func TestSummarizeFlagsRisingBalance(t *testing.T) {
	p := NewLoanProcessor()
	loan := models.CarLoan{LoanAmount: 200000, RemainingAmount: 150000}

	s := p.Summarize(loan, []models.LoanPayment{
		{PaymentDate: "2024-01-01", Amount: 3000, InterestAmount: 500, PrincipalAmount: 2500, RemainingBalance: 197500},
		{PaymentDate: "2024-02-01", Amount: 3000, InterestAmount: 490, PrincipalAmount: 2510, RemainingBalance: 194990},
	})
	assert.False(t, s.BalanceIncreases)
	assert.InDelta(t, 6000, s.TotalPaid, 0.001)
	assert.InDelta(t, 990, s.TotalInterest, 0.001)
	assert.InDelta(t, 5010, s.TotalPrincipal, 0.001)
	assert.InDelta(t, 25, s.ProgressPercent, 0.001)

	s = p.Summarize(loan, []models.LoanPayment{
		{PaymentDate: "2024-01-01", RemainingBalance: 100},
		{PaymentDate: "2024-02-01", RemainingBalance: 120},
	})
	assert.True(t, s.BalanceIncreases)

	assert.Zero(t, p.Summarize(models.CarLoan{}, nil).ProgressPercent)
}

func TestNormalizeLoan(t *testing.T) {
	p := NewLoanProcessor()
	loan := models.CarLoan{TotalMonths: 84, PaidMonths: 12, RemainingMonths: 3}
	require.NoError(t, p.NormalizeLoan(&loan))
	assert.Equal(t, 72, loan.RemainingMonths)

	loan = models.CarLoan{TotalMonths: 12, PaidMonths: 13}
	assert.ErrorIs(t, p.NormalizeLoan(&loan), ErrInconsistentLoan)
}

func TestNormalizePayment(t *testing.T) {
	p := NewLoanProcessor()

	pay := models.LoanPayment{Amount: 3000, InterestAmount: 412.35}
	require.NoError(t, p.NormalizePayment(&pay, false))
	assert.InDelta(t, 2587.65, pay.PrincipalAmount, 0.0001)

	pay = models.LoanPayment{Amount: 3000, InterestAmount: 400, PrincipalAmount: 2600.005}
	assert.NoError(t, p.NormalizePayment(&pay, true))

	pay = models.LoanPayment{Amount: 3000, InterestAmount: 400, PrincipalAmount: 2500}
	assert.ErrorIs(t, p.NormalizePayment(&pay, true), ErrInconsistentLoan)

	pay = models.LoanPayment{Amount: 100, InterestAmount: 200}
	assert.ErrorIs(t, p.NormalizePayment(&pay, false), ErrInconsistentLoan)
}
