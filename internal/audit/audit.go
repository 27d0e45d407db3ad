package audit

import (
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"go.uber.org/zap"
)

const (
	EventMovement     = "MOVEMENT"
	EventDisbursement = "DISBURSEMENT"
	EventAccrual      = "INTEREST_ACCRUAL"
	EventLoanCreated  = "LOAN_CREATED"
	EventError        = "ERROR"
)

// Logger writes one structured AUDIT record per ledger event
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("audit")}
}

func (a *Logger) LogMovement(result *models.MovementResult) {
	a.write(EventMovement, string(result.Status),
		zap.String("transaction_id", result.TransactionID),
		zap.String("transaction_type", string(result.Type)),
		zap.String("reference", result.Reference),
		zap.String("debit_account", result.DebitAccount.AccountNo),
		zap.String("credit_account", result.CreditAccount.AccountNo),
		zap.String("amount", result.Amount.StringFixed(4)),
		zap.String("debit_balance_after", result.DebitAccount.BalanceAfter.StringFixed(4)),
		zap.String("credit_balance_after", result.CreditAccount.BalanceAfter.StringFixed(4)),
	)
}

func (a *Logger) LogLoan(event string, loan *models.Loan) {
	a.write(event, string(loan.Status),
		zap.String("loan_id", loan.ID),
		zap.String("loan_number", loan.LoanNumber),
		zap.String("account_no", loan.AccountNo),
		zap.String("principal", loan.PrincipalAmount.StringFixed(4)),
		zap.String("currency", loan.Currency),
	)
}

func (a *Logger) LogAccrual(accrual *models.DailyInterestAccrual) {
	a.write(EventAccrual, "SUCCESS",
		zap.String("loan_id", accrual.LoanID),
		zap.String("accrual_date", accrual.AccrualDate.Format(time.DateOnly)),
		zap.String("interest_amount", accrual.InterestAmount.StringFixed(4)),
		zap.String("cumulative_interest", accrual.CumulativeInterest.StringFixed(4)),
		zap.Int("days_in_year", accrual.DaysInYear),
	)
}

// LogError records a rejected or failed operation. subject is whatever
// identifies it best: an idempotency key, account number or loan id.
func (a *Logger) LogError(operation, subject string, err error) {
	a.write(EventError, "FAILED",
		zap.String("operation", operation),
		zap.String("subject", subject),
		zap.Error(err),
	)
}

func (a *Logger) write(eventType, status string, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("event_type", eventType),
		zap.String("status", status),
	}, fields...)
	a.log.Info("AUDIT", fields...)
}
