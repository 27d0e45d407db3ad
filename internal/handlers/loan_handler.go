package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/ledger/internal/models"
)

type LoanService interface {
	CreateLoan(ctx context.Context, req models.CreateLoanRequest) (*models.Loan, error)
	DisburseLoan(ctx context.Context, req models.DisburseLoanRequest) (*models.DisbursementResult, error)
	GetLoan(ctx context.Context, id string) (*models.Loan, error)
	ListLoans(ctx context.Context, limit, offset int) ([]*models.Loan, error)
	ListLoansByAccount(ctx context.Context, accountNo string) ([]*models.Loan, error)
}

type AccrualHistory interface {
	GetLoanAccrualHistory(ctx context.Context, loanID string, limit int) ([]*models.DailyInterestAccrual, error)
}

type LoanHandler struct {
	loans     LoanService
	accruals  AccrualHistory
	validator *ValidationHelper
}

func NewLoanHandler(loans LoanService, accruals AccrualHistory) *LoanHandler {
	return &LoanHandler{
		loans:     loans,
		accruals:  accruals,
		validator: NewValidationHelper(),
	}
}

func (h *LoanHandler) Routes(r chi.Router) {
	r.Post("/loans", h.CreateLoan)
	r.Get("/loans", h.ListLoans)
	r.Get("/loans/{id}", h.GetLoan)
	r.Post("/loans/{id}/disburse", h.DisburseLoan)
	r.Get("/loans/{id}/accruals", h.GetAccrualHistory)
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLoanRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}

	loan, err := h.loans.CreateLoan(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, loan)
}

// ListLoans pages through all loans, or returns one borrower's loans when
// ?account_no is given
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var (
		loans []*models.Loan
		err   error
	)
	if accountNo := r.URL.Query().Get("account_no"); accountNo != "" {
		loans, err = h.loans.ListLoansByAccount(r.Context(), accountNo)
	} else {
		limit, offset := pageParams(r)
		loans, err = h.loans.ListLoans(r.Context(), limit, offset)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loans.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, loan)
}

// DisburseLoan pays the principal out of a pool account and activates the loan
func (h *LoanHandler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	var req models.DisburseLoanRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}
	req.LoanID = chi.URLParam(r, "id")

	result, err := h.loans.DisburseLoan(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

func (h *LoanHandler) GetAccrualHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)
	history, err := h.accruals.GetLoanAccrualHistory(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, history)
}
