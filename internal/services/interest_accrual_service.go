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

type InterestAccrualService struct {
	db       *sql.DB
	loans    *repository.LoanRepository
	accruals *repository.AccrualRepository
	audit    *audit.Logger
	log      *zap.Logger
	now      func() time.Time
}

func NewInterestAccrualService(db *sql.DB, auditLog *audit.Logger) *InterestAccrualService {
	if auditLog == nil {
		auditLog = audit.NewLogger(logger.Log)
	}
	return &InterestAccrualService{
		db:       db,
		loans:    repository.NewLoanRepository(db),
		accruals: repository.NewAccrualRepository(db),
		audit:    auditLog,
		log:      logger.Log.Named("interest"),
		now:      time.Now,
	}
}

// AccrueLoanInterest books one day of simple interest on an active loan.
// It returns a nil accrual and no error when the day was already accrued.
func (s *InterestAccrualService) AccrueLoanInterest(ctx context.Context, loanID string, date time.Time) (*models.DailyInterestAccrual, error) {
	day := interest.Day(date)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loans.GetByIDForUpdate(ctx, tx, loanID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, accrualErr(AccrualErrLoanNotFound, "loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock loan: %w", err)
	}

	if loan.Status != models.LoanStatusActive {
		return nil, accrualErr(AccrualErrInvalidStatus,
			fmt.Sprintf("cannot accrue interest on a %s loan", loan.Status))
	}
	if loan.DisbursementDate == nil {
		return nil, accrualErr(AccrualErrLoanNotDisbursed, "loan has not been disbursed")
	}
	if day.Before(interest.Day(*loan.DisbursementDate)) {
		return nil, accrualErr(AccrualErrInvalidAccrualDate,
			fmt.Sprintf("accrual date %s is before disbursement date %s",
				day.Format(time.DateOnly), loan.DisbursementDate.Format(time.DateOnly)))
	}

	_, err = s.accruals.GetByLoanAndDate(ctx, tx, loan.ID, day)
	switch {
	case err == nil:
		return nil, nil
	case !errors.Is(err, repository.ErrRecordNotFound):
		return nil, fmt.Errorf("check existing accrual: %w", err)
	}

	calc := interest.CalculateDailyInterest(loan.OutstandingPrincipal, loan.InterestRate, day)
	accrual := &models.DailyInterestAccrual{
		ID:                 uuid.NewString(),
		LoanID:             loan.ID,
		AccrualDate:        day,
		PrincipalBalance:   loan.OutstandingPrincipal,
		DailyRate:          calc.DailyRate,
		InterestAmount:     calc.InterestAmount,
		DaysInYear:         calc.DaysInYear,
		CumulativeInterest: loan.AccruedInterest.Add(calc.InterestAmount),
		CreatedAt:          s.now(),
	}
	if err := s.accruals.Create(ctx, tx, accrual); err != nil {
		return nil, err
	}

	// last_accrual_date only moves forward, a back-filled gap leaves it alone
	lastAccrual := day
	if loan.LastAccrualDate != nil && interest.Day(*loan.LastAccrualDate).After(day) {
		lastAccrual = interest.Day(*loan.LastAccrualDate)
	}
	if err := s.loans.UpdateAccrual(ctx, tx, loan.ID, accrual.CumulativeInterest, lastAccrual); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accrual: %w", err)
	}

	s.audit.LogAccrual(accrual)
	return accrual, nil
}

// AccrueInterestForAllLoans catches every active loan up to asOf, one day
// at a time. A loan that fails stops at that day and is reported; the sweep
// carries on with the next loan.
func (s *InterestAccrualService) AccrueInterestForAllLoans(ctx context.Context, asOf time.Time) (*models.AccrualSweepResult, error) {
	asOf = interest.Day(asOf)

	loans, err := s.loans.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active loans: %w", err)
	}

	result := &models.AccrualSweepResult{Errors: []models.AccrualFailure{}}
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start, ok := interest.NextAccrualDate(loan.LastAccrualDate, loan.DisbursementDate)
		if !ok {
			result.Errors = append(result.Errors, models.AccrualFailure{LoanID: loan.ID, Error: "No disbursement date"})
			continue
		}
		if start.After(asOf) {
			continue
		}

		if err := s.catchUp(ctx, loan.ID, start, asOf); err != nil {
			s.log.Warn("loan accrual failed", zap.String("loan_id", loan.ID), zap.Error(err))
			result.Errors = append(result.Errors, models.AccrualFailure{LoanID: loan.ID, Error: err.Error()})
			continue
		}
		result.Processed++
	}

	s.log.Info("interest sweep finished",
		zap.String("as_of", asOf.Format(time.DateOnly)),
		zap.Int("processed", result.Processed),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *InterestAccrualService) catchUp(ctx context.Context, loanID string, start, end time.Time) error {
	for _, day := range interest.DateRange(start, end) {
		if _, err := s.AccrueLoanInterest(ctx, loanID, day); err != nil {
			return err
		}
	}
	return nil
}

func (s *InterestAccrualService) GetLoanAccrualHistory(ctx context.Context, loanID string, limit int) ([]*models.DailyInterestAccrual, error) {
	return s.accruals.ListByLoan(ctx, loanID, clampLimit(limit))
}

func (s *InterestAccrualService) GetLoanTotalAccruedInterest(ctx context.Context, loanID string) (decimal.Decimal, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return decimal.Zero, accrualErr(AccrualErrLoanNotFound, "loan not found")
	}
	if err != nil {
		return decimal.Zero, err
	}
	return loan.AccruedInterest, nil
}
