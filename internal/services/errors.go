package services

import "fmt"

// MovementErrorKind enumerates why a transfer or funding request was refused
type MovementErrorKind string

const (
	ErrInvalidAmount              MovementErrorKind = "INVALID_AMOUNT"
	ErrSameAccount                MovementErrorKind = "SAME_ACCOUNT"
	ErrDebitAccountNotFound       MovementErrorKind = "DEBIT_ACCOUNT_NOT_FOUND"
	ErrCreditAccountNotFound      MovementErrorKind = "CREDIT_ACCOUNT_NOT_FOUND"
	ErrSourceAccountNotFound      MovementErrorKind = "SOURCE_ACCOUNT_NOT_FOUND"
	ErrDestinationAccountNotFound MovementErrorKind = "DESTINATION_ACCOUNT_NOT_FOUND"
	ErrCurrencyMismatch           MovementErrorKind = "CURRENCY_MISMATCH"
	ErrInsufficientBalance        MovementErrorKind = "INSUFFICIENT_BALANCE"
	ErrPreviousTransferFailed     MovementErrorKind = "PREVIOUS_TRANSFER_FAILED"
	ErrPreviousFundingFailed      MovementErrorKind = "PREVIOUS_FUNDING_FAILED"
	ErrTransferInFlight           MovementErrorKind = "TRANSFER_IN_FLIGHT"
	ErrFundingInFlight            MovementErrorKind = "FUNDING_IN_FLIGHT"
	ErrWalletNotFound             MovementErrorKind = "WALLET_NOT_FOUND"
	ErrNoAccount                  MovementErrorKind = "NO_ACCOUNT"
	ErrTransactionNotFound        MovementErrorKind = "TRANSACTION_NOT_FOUND"
)

// MovementError is returned by the transfer and funding engines
type MovementError struct {
	Kind    MovementErrorKind
	Message string
	Err     error
}

func (e *MovementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MovementError) Unwrap() error { return e.Err }

// Is matches any *MovementError of the same kind
func (e *MovementError) Is(target error) bool {
	t, ok := target.(*MovementError)
	return ok && t.Kind == e.Kind
}

func movementErr(kind MovementErrorKind, msg string) *MovementError {
	return &MovementError{Kind: kind, Message: msg}
}

type LoanErrorKind string

const (
	LoanErrInvalidAmount       LoanErrorKind = "INVALID_AMOUNT"
	LoanErrAccountNotFound     LoanErrorKind = "ACCOUNT_NOT_FOUND"
	LoanErrCurrencyMismatch    LoanErrorKind = "CURRENCY_MISMATCH"
	LoanErrLoanNotFound        LoanErrorKind = "LOAN_NOT_FOUND"
	LoanErrInvalidStatus       LoanErrorKind = "INVALID_LOAN_STATUS"
	LoanErrInsufficientBalance LoanErrorKind = "INSUFFICIENT_BALANCE"
	LoanErrSameAccount         LoanErrorKind = "SAME_ACCOUNT"
)

// LoanError is returned by the loan lifecycle manager
type LoanError struct {
	Kind    LoanErrorKind
	Message string
	Err     error
}

func (e *LoanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *LoanError) Unwrap() error { return e.Err }

func (e *LoanError) Is(target error) bool {
	t, ok := target.(*LoanError)
	return ok && t.Kind == e.Kind
}

func loanErr(kind LoanErrorKind, msg string) *LoanError {
	return &LoanError{Kind: kind, Message: msg}
}

type AccrualErrorKind string

const (
	AccrualErrLoanNotFound       AccrualErrorKind = "LOAN_NOT_FOUND"
	AccrualErrInvalidStatus      AccrualErrorKind = "INVALID_LOAN_STATUS"
	AccrualErrLoanNotDisbursed   AccrualErrorKind = "LOAN_NOT_DISBURSED"
	AccrualErrInvalidAccrualDate AccrualErrorKind = "INVALID_ACCRUAL_DATE"
)

// AccrualError is returned by the interest accrual engine
type AccrualError struct {
	Kind    AccrualErrorKind
	Message string
	Err     error
}

func (e *AccrualError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AccrualError) Unwrap() error { return e.Err }

func (e *AccrualError) Is(target error) bool {
	t, ok := target.(*AccrualError)
	return ok && t.Kind == e.Kind
}

func accrualErr(kind AccrualErrorKind, msg string) *AccrualError {
	return &AccrualError{Kind: kind, Message: msg}
}
