package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusPaidOff   LoanStatus = "PAID_OFF"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

// Loan is a borrowing facility against a borrower account
type Loan struct {
	ID                   string          `json:"id" db:"id"`
	LoanNumber           string          `json:"loan_number" db:"loan_number"`
	AccountNo            string          `json:"account_no" db:"account_no"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal" db:"outstanding_principal"`
	InterestRate         decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	AccruedInterest      decimal.Decimal `json:"accrued_interest" db:"accrued_interest"`
	Status               LoanStatus      `json:"status" db:"status"`
	DisbursementDate     *time.Time      `json:"disbursement_date,omitempty" db:"disbursement_date"`
	LastAccrualDate      *time.Time      `json:"last_accrual_date,omitempty" db:"last_accrual_date"`
	MaturityDate         *time.Time      `json:"maturity_date,omitempty" db:"maturity_date"`
	Currency             string          `json:"currency" db:"currency"`
	Metadata             Metadata        `json:"metadata,omitempty" db:"metadata"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// DailyInterestAccrual records one day of interest for one loan
type DailyInterestAccrual struct {
	ID                 string          `json:"id" db:"id"`
	LoanID             string          `json:"loan_id" db:"loan_id"`
	AccrualDate        time.Time       `json:"accrual_date" db:"accrual_date"`
	PrincipalBalance   decimal.Decimal `json:"principal_balance" db:"principal_balance"`
	DailyRate          decimal.Decimal `json:"daily_rate" db:"daily_rate"`
	InterestAmount     decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	DaysInYear         int             `json:"days_in_year" db:"days_in_year"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest" db:"cumulative_interest"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// CreateLoanRequest books a new loan in PENDING state
type CreateLoanRequest struct {
	AccountNo       string           `json:"account_no" validate:"required,max=30"`
	PrincipalAmount decimal.Decimal  `json:"principal_amount"`
	InterestRate    *decimal.Decimal `json:"interest_rate,omitempty"`
	Currency        string           `json:"currency" validate:"omitempty,len=3,uppercase"`
	MaturityDate    *time.Time       `json:"maturity_date,omitempty"`
	Metadata        Metadata         `json:"metadata"`
}

// DisburseLoanRequest activates a pending loan by paying out its principal
type DisburseLoanRequest struct {
	LoanID           string     `json:"-"`
	SourceAccountNo  string     `json:"source_account_no" validate:"required,max=30"`
	DisbursementDate *time.Time `json:"disbursement_date,omitempty"`
}

// DisbursementResult pairs the activated loan with the money movement
type DisbursementResult struct {
	Loan        *Loan           `json:"loan"`
	Transaction *MovementResult `json:"transaction"`
}

// AccrualFailure names a loan whose catch-up stopped partway
type AccrualFailure struct {
	LoanID string `json:"loan_id"`
	Error  string `json:"error"`
}

// AccrualSweepResult summarises one run over all active loans
type AccrualSweepResult struct {
	Processed int              `json:"processed"`
	Errors    []AccrualFailure `json:"errors"`
}
