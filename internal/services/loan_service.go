package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/audit"
	"github.com/ruralpay/ledger/internal/interest"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultInterestRate is the annual rate applied when a loan names none
var DefaultInterestRate = decimal.RequireFromString("0.275")

type LoanService struct {
	db       *sql.DB
	loans    *repository.LoanRepository
	accounts *repository.AccountRepository
	ledger   *DoubleLedgerService
	audit    *audit.Logger
	log      *zap.Logger
	now      func() time.Time
}

func NewLoanService(db *sql.DB, ledger *DoubleLedgerService) *LoanService {
	return &LoanService{
		db:       db,
		loans:    repository.NewLoanRepository(db),
		accounts: ledger.accounts,
		ledger:   ledger,
		audit:    ledger.audit,
		log:      logger.Log.Named("loans"),
		now:      time.Now,
	}
}

func (s *LoanService) CreateLoan(ctx context.Context, req models.CreateLoanRequest) (*models.Loan, error) {
	if !req.PrincipalAmount.IsPositive() {
		return nil, loanErr(LoanErrInvalidAmount, "principal amount must be greater than zero")
	}
	if !interest.HasPrecision(req.PrincipalAmount, interest.AmountPlaces) {
		return nil, loanErr(LoanErrInvalidAmount,
			fmt.Sprintf("principal amount cannot have more than %d decimal places", interest.AmountPlaces))
	}

	rate := DefaultInterestRate
	if req.InterestRate != nil {
		rate = *req.InterestRate
	}
	if rate.IsNegative() {
		return nil, loanErr(LoanErrInvalidAmount, "interest rate cannot be negative")
	}
	if !interest.HasPrecision(rate, interest.RatePlaces) {
		return nil, loanErr(LoanErrInvalidAmount,
			fmt.Sprintf("interest rate cannot have more than %d decimal places", interest.RatePlaces))
	}

	account, err := s.accounts.GetByAccountNo(ctx, req.AccountNo)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, loanErr(LoanErrAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get borrower account: %w", err)
	}

	currency := account.Currency
	if req.Currency != "" {
		if req.Currency != account.Currency {
			return nil, loanErr(LoanErrCurrencyMismatch,
				fmt.Sprintf("loan currency %s does not match account currency %s", req.Currency, account.Currency))
		}
		currency = req.Currency
	}

	now := s.now()
	loan := &models.Loan{
		ID:                   uuid.NewString(),
		LoanNumber:           generateReference("LOAN", 6),
		AccountNo:            account.AccountNo,
		PrincipalAmount:      req.PrincipalAmount,
		OutstandingPrincipal: req.PrincipalAmount,
		InterestRate:         rate,
		AccruedInterest:      decimal.Zero,
		Status:               models.LoanStatusPending,
		MaturityDate:         req.MaturityDate,
		Currency:             currency,
		Metadata:             req.Metadata,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.audit.LogLoan(audit.EventLoanCreated, loan)
	return loan, nil
}

// DisburseLoan pays the principal from the source account to the borrower and
// activates the loan in the same unit of work. A loan that is no longer
// PENDING is refused, which makes repeated calls harmless.
func (s *LoanService) DisburseLoan(ctx context.Context, req models.DisburseLoanRequest) (*models.DisbursementResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loans.GetByIDForUpdate(ctx, tx, req.LoanID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, loanErr(LoanErrLoanNotFound, "loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock loan: %w", err)
	}

	if loan.Status != models.LoanStatusPending {
		return nil, loanErr(LoanErrInvalidStatus,
			fmt.Sprintf("loan is %s, only PENDING loans can be disbursed", loan.Status))
	}

	disbursedAt := s.now()
	if req.DisbursementDate != nil {
		disbursedAt = *req.DisbursementDate
	}

	result, err := s.ledger.TransferTx(ctx, tx, Movement{
		DebitAccountNo:  req.SourceAccountNo,
		CreditAccountNo: loan.AccountNo,
		Amount:          loan.PrincipalAmount,
		Type:            models.TransactionTypeDisbursement,
		Reference:       "DISBURSEMENT-" + loan.LoanNumber,
		Metadata:        models.Metadata{"loanId": loan.ID, "loanNumber": loan.LoanNumber},
		Currency:        loan.Currency,
	})
	if err != nil {
		return nil, toLoanError(err)
	}

	if err := s.loans.Activate(ctx, tx, loan.ID, disbursedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit disbursement: %w", err)
	}

	loan.Status = models.LoanStatusActive
	loan.DisbursementDate = &disbursedAt

	s.audit.LogMovement(result)
	s.audit.LogLoan(audit.EventDisbursement, loan)
	s.log.Info("loan disbursed",
		zap.String("loan_id", loan.ID),
		zap.String("transaction_id", result.TransactionID),
	)

	return &models.DisbursementResult{Loan: loan, Transaction: result}, nil
}

func (s *LoanService) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, loanErr(LoanErrLoanNotFound, "loan not found")
	}
	return loan, err
}

func (s *LoanService) ListLoans(ctx context.Context, limit, offset int) ([]*models.Loan, error) {
	if offset < 0 {
		offset = 0
	}
	return s.loans.List(ctx, clampLimit(limit), offset)
}

func (s *LoanService) ListLoansByAccount(ctx context.Context, accountNo string) ([]*models.Loan, error) {
	return s.loans.ListByAccountNo(ctx, accountNo)
}

func (s *LoanService) ListActiveLoans(ctx context.Context) ([]*models.Loan, error) {
	return s.loans.ListActive(ctx)
}

// toLoanError restates a refused disbursement movement in loan terms
func toLoanError(err error) error {
	var movErr *MovementError
	if !errors.As(err, &movErr) {
		return err
	}

	var kind LoanErrorKind
	switch movErr.Kind {
	case ErrDebitAccountNotFound, ErrCreditAccountNotFound:
		kind = LoanErrAccountNotFound
	case ErrCurrencyMismatch:
		kind = LoanErrCurrencyMismatch
	case ErrInsufficientBalance:
		kind = LoanErrInsufficientBalance
	case ErrSameAccount:
		kind = LoanErrSameAccount
	case ErrInvalidAmount:
		kind = LoanErrInvalidAmount
	default:
		return err
	}
	return &LoanError{Kind: kind, Message: movErr.Message, Err: movErr}
}
