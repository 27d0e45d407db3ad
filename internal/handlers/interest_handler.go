package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/ledger/internal/models"
)

// AccrualTrigger runs the accrual job on demand
type AccrualTrigger interface {
	RunNow(ctx context.Context, asOf time.Time) (*models.AccrualSweepResult, error)
	RunLoan(ctx context.Context, loanID string, date time.Time) (*models.DailyInterestAccrual, error)
}

type InterestHandler struct {
	trigger   AccrualTrigger
	validator *ValidationHelper
	now       func() time.Time
}

func NewInterestHandler(trigger AccrualTrigger) *InterestHandler {
	return &InterestHandler{
		trigger:   trigger,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

func (h *InterestHandler) Routes(r chi.Router) {
	r.Post("/interest/accrue", h.Accrue)
}

type accrueRequest struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	LoanID string `json:"loan_id" validate:"omitempty,max=64"`
}

// Accrue runs the sweep for a date (today by default). With loan_id it books
// that single loan for that single day instead.
func (h *InterestHandler) Accrue(w http.ResponseWriter, r *http.Request) {
	var req accrueRequest
	if !h.validator.decodeJSON(w, r, &req, true) {
		return
	}

	date := h.now()
	if req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			SendErrorResponse(w, "Invalid date", http.StatusBadRequest, nil)
			return
		}
		date = parsed
	}

	if req.LoanID != "" {
		accrual, err := h.trigger.RunLoan(r.Context(), req.LoanID, date)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, map[string]any{
			"accrued": accrual != nil,
			"accrual": accrual,
		})
		return
	}

	result, err := h.trigger.RunNow(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}
