package handlers

import (
	"errors"
	"net/http"

	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/processors"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/utils"
)

type CarLoanHandler struct {
	processor *processors.LoanProcessor
}

func NewCarLoanHandler() *CarLoanHandler {
	return &CarLoanHandler{processor: processors.NewLoanProcessor()}
}

type carLoanRequest struct {
	Name            string   `json:"name"`
	LoanAmount      float64  `json:"loan_amount"`
	RemainingAmount *float64 `json:"remaining_amount"`
	MonthlyPayment  float64  `json:"monthly_payment"`
	InterestRate    float64  `json:"interest_rate"`
	TotalMonths     int      `json:"total_months"`
	PaidMonths      int      `json:"paid_months"`
	StartDate       string   `json:"start_date"`
}

// apply validates req onto loan. An omitted remaining_amount means nothing is repaid yet.
func (h *CarLoanHandler) apply(req carLoanRequest, loan *models.CarLoan) error {
	var err error
	if loan.Name, err = validation.CleanRequired(req.Name, validation.DefaultMaxStringLength, "name"); err != nil {
		return err
	}
	if err = validation.ValidatePositiveAmount(req.LoanAmount, "loan_amount"); err != nil {
		return err
	}
	if err = validation.ValidatePositiveAmount(req.MonthlyPayment, "monthly_payment"); err != nil {
		return err
	}
	if err = validation.ValidateNonNegativeAmount(req.InterestRate, "interest_rate"); err != nil {
		return err
	}
	if req.TotalMonths <= 0 {
		return errors.New("total_months must be greater than zero")
	}
	loan.LoanAmount = req.LoanAmount
	loan.MonthlyPayment = req.MonthlyPayment
	loan.InterestRate = req.InterestRate
	loan.TotalMonths = req.TotalMonths
	loan.PaidMonths = req.PaidMonths

	loan.RemainingAmount = req.LoanAmount
	if req.RemainingAmount != nil {
		if err = validation.ValidateNonNegativeAmount(*req.RemainingAmount, "remaining_amount"); err != nil {
			return err
		}
		loan.RemainingAmount = *req.RemainingAmount
	}

	loan.StartDate = ""
	if req.StartDate != "" {
		d, err := validation.ValidateISODate(req.StartDate, "start_date")
		if err != nil {
			return err
		}
		loan.StartDate = d.Format(validation.ISODateLayout)
	}
	return h.processor.NormalizeLoan(loan)
}

func (h *CarLoanHandler) HandleListLoans(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	loans, err := model.ListCarLoans(database.DB, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list car loans", "error", err)
		utils.SendJSONError(w, "Failed to load car loans", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *CarLoanHandler) HandleCreateLoan(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	var req carLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	loan := &models.CarLoan{UserID: userID}
	if err := h.apply(req, loan); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.CreateCarLoan(database.DB, loan); err != nil {
		ctxLogger.Error("Failed to create car loan", "error", err)
		utils.SendJSONError(w, "Failed to save car loan", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{"loan": loan})
}

func (h *CarLoanHandler) HandleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req carLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	loan, ok := h.loadLoan(w, r, userID, id)
	if !ok {
		return
	}
	if err := h.apply(req, loan); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.UpdateCarLoan(database.DB, loan); err != nil {
		ctxLogger.Error("Failed to update car loan", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to save car loan", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"loan": loan})
}

func (h *CarLoanHandler) HandleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.DeleteCarLoan(database.DB, userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Car loan not found", http.StatusBadRequest)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete car loan", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete car loan", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Car loan deleted"})
}

func (h *CarLoanHandler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.loadLoan(w, r, userID, id); !ok {
		return
	}
	payments, err := model.ListLoanPayments(database.DB, userID, id)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list loan payments", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to load payments", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *CarLoanHandler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	userID, _ := GetUserIDFromContext(r.Context())

	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		PaymentDate      string   `json:"payment_date"`
		Amount           float64  `json:"amount"`
		InterestAmount   float64  `json:"interest_amount"`
		PrincipalAmount  *float64 `json:"principal_amount"`
		RemainingBalance float64  `json:"remaining_balance"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.loadLoan(w, r, userID, id); !ok {
		return
	}

	d, err := validation.ValidateISODate(req.PaymentDate, "payment_date")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositiveAmount(req.Amount, "amount"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateNonNegativeAmount(req.RemainingBalance, "remaining_balance"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment := &models.LoanPayment{
		LoanID:           id,
		UserID:           userID,
		PaymentDate:      d.Format(validation.ISODateLayout),
		Amount:           req.Amount,
		InterestAmount:   req.InterestAmount,
		RemainingBalance: req.RemainingBalance,
	}
	if req.PrincipalAmount != nil {
		payment.PrincipalAmount = *req.PrincipalAmount
	}
	if err := h.processor.NormalizePayment(payment, req.PrincipalAmount != nil); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.CreateLoanPayment(database.DB, payment); err != nil {
		ctxLogger.Error("Failed to create loan payment", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to save payment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{"payment": payment})
}

// HandleGetSchedule returns display rows and repayment totals for a loan.
func (h *CarLoanHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	loan, ok := h.loadLoan(w, r, userID, id)
	if !ok {
		return
	}
	payments, err := model.ListLoanPayments(database.DB, userID, id)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list loan payments", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to load payments", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"schedule": h.processor.Summarize(*loan, payments)})
}

func (h *CarLoanHandler) loadLoan(w http.ResponseWriter, r *http.Request, userID, id int64) (*models.CarLoan, bool) {
	loan, err := model.GetCarLoan(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "Car loan not found", http.StatusBadRequest)
			return nil, false
		}
		logger.FromContext(r.Context()).Error("Car loan lookup failed", "loanID", id, "error", err)
		utils.SendJSONError(w, "Failed to load car loan", http.StatusInternalServerError)
		return nil, false
	}
	return loan, true
}
