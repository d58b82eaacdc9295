package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/homedash/backend/src/models"
)

const carLoanColumns = `id, user_id, name, loan_amount, remaining_amount, monthly_payment, interest_rate, total_months, paid_months, remaining_months, start_date, created_at, updated_at`

func scanCarLoan(row interface{ Scan(...any) error }) (*models.CarLoan, error) {
	var l models.CarLoan
	err := row.Scan(
		&l.ID, &l.UserID, &l.Name, &l.LoanAmount, &l.RemainingAmount, &l.MonthlyPayment,
		&l.InterestRate, &l.TotalMonths, &l.PaidMonths, &l.RemainingMonths, &l.StartDate,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func CreateCarLoan(db *sql.DB, loan *models.CarLoan) error {
	now := time.Now().UTC()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	res, err := db.Exec(`
	INSERT INTO car_loans (user_id, name, loan_amount, remaining_amount, monthly_payment, interest_rate, total_months, paid_months, remaining_months, start_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.UserID, loan.Name, loan.LoanAmount, loan.RemainingAmount, loan.MonthlyPayment,
		loan.InterestRate, loan.TotalMonths, loan.PaidMonths, loan.RemainingMonths, loan.StartDate,
		loan.CreatedAt, loan.UpdatedAt)
	if err != nil {
		return err
	}
	loan.ID, err = res.LastInsertId()
	return err
}

func ListCarLoans(db *sql.DB, userID int64) ([]models.CarLoan, error) {
	rows, err := db.Query(`SELECT `+carLoanColumns+` FROM car_loans WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []models.CarLoan{}
	for rows.Next() {
		l, err := scanCarLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

func GetCarLoan(db *sql.DB, userID, id int64) (*models.CarLoan, error) {
	return scanCarLoan(db.QueryRow(`SELECT `+carLoanColumns+` FROM car_loans WHERE user_id = ? AND id = ?`, userID, id))
}

func UpdateCarLoan(db *sql.DB, loan *models.CarLoan) error {
	loan.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(`
	UPDATE car_loans
	SET name = ?, loan_amount = ?, remaining_amount = ?, monthly_payment = ?, interest_rate = ?,
	    total_months = ?, paid_months = ?, remaining_months = ?, start_date = ?, updated_at = ?
	WHERE user_id = ? AND id = ?`,
		loan.Name, loan.LoanAmount, loan.RemainingAmount, loan.MonthlyPayment, loan.InterestRate,
		loan.TotalMonths, loan.PaidMonths, loan.RemainingMonths, loan.StartDate, loan.UpdatedAt,
		loan.UserID, loan.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func DeleteCarLoan(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM car_loans WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func CreateLoanPayment(db *sql.DB, p *models.LoanPayment) error {
	p.CreatedAt = time.Now().UTC()
	res, err := db.Exec(`
	INSERT INTO car_loan_payments (loan_id, user_id, payment_date, amount, interest_amount, principal_amount, remaining_balance, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LoanID, p.UserID, p.PaymentDate, p.Amount, p.InterestAmount, p.PrincipalAmount, p.RemainingBalance, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

// ListLoanPayments returns a loan's payments in payment date order.
func ListLoanPayments(db *sql.DB, userID, loanID int64) ([]models.LoanPayment, error) {
	rows, err := db.Query(`
	SELECT id, loan_id, user_id, payment_date, amount, interest_amount, principal_amount, remaining_balance, created_at
	FROM car_loan_payments
	WHERE user_id = ? AND loan_id = ?
	ORDER BY payment_date, id`, userID, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.LoanPayment{}
	for rows.Next() {
		var p models.LoanPayment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.UserID, &p.PaymentDate, &p.Amount, &p.InterestAmount,
			&p.PrincipalAmount, &p.RemainingBalance, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
