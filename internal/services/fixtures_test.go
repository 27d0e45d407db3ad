package services

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

var accountCols = []string{"id", "account_type", "account_name", "account_no", "currency", "balance", "cleared_balance", "wallet_id", "version", "created_at", "updated_at"}

var transactionCols = []string{"id", "idempotency_key", "transaction_type", "status", "reference", "debit_account_no", "credit_account_no", "amount",
	"debit_balance_before", "debit_balance_after", "credit_balance_before", "credit_balance_after", "metadata", "error_message", "created_at", "updated_at"}

var loanCols = []string{"id", "loan_number", "account_no", "principal_amount", "outstanding_principal", "interest_rate", "accrued_interest", "status",
	"disbursement_date", "last_accrual_date", "maturity_date", "currency", "metadata", "created_at", "updated_at"}

var accrualCols = []string{"id", "loan_id", "accrual_date", "principal_balance", "daily_rate", "interest_amount", "days_in_year", "cumulative_interest", "created_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestLedger(t *testing.T) (*DoubleLedgerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	service := NewDoubleLedgerService(db, nil)
	service.now = func() time.Time { return fixedNow }
	return service, mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type accountFixture struct {
	accountNo string
	balance   string
	currency  string
	walletID  any
	version   int
}

func accountRow(a accountFixture) *sqlmock.Rows {
	currency := a.currency
	if currency == "" {
		currency = "NGN"
	}
	version := a.version
	if version == 0 {
		version = 1
	}
	return sqlmock.NewRows(accountCols).AddRow(
		"id-"+a.accountNo, "USER_WALLET", "Test "+a.accountNo, a.accountNo, currency,
		a.balance, a.balance, a.walletID, version, fixedNow, fixedNow,
	)
}

func expectLock(mock sqlmock.Sqlmock, a accountFixture) {
	mock.ExpectQuery(`FROM accounts WHERE account_no = \$1 FOR UPDATE`).
		WithArgs(a.accountNo).
		WillReturnRows(accountRow(a))
}

func expectLockMissing(mock sqlmock.Sqlmock, accountNo string) {
	mock.ExpectQuery(`FROM accounts WHERE account_no = \$1 FOR UPDATE`).
		WithArgs(accountNo).
		WillReturnRows(sqlmock.NewRows(accountCols))
}

// expectMovement registers the writes of one successful movement after both
// accounts have been locked
func expectMovement(mock sqlmock.Sqlmock, txType models.TransactionType, debit, credit accountFixture, amount, debitAfter, creditAfter string) {
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), string(txType), "PENDING", sqlmock.AnyArg(),
			debit.accountNo, credit.accountNo, dec(amount),
			dec(debit.balance), dec(debitAfter), dec(credit.balance), dec(creditAfter),
			sqlmock.AnyArg(), nil, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), debit.accountNo, "DEBIT", dec(amount), dec(debit.balance), dec(debitAfter), fixedNow,
			sqlmock.AnyArg(), sqlmock.AnyArg(), credit.accountNo, "CREDIT", dec(amount), dec(credit.balance), dec(creditAfter), fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	mock.ExpectExec(`UPDATE accounts SET balance = \$1, cleared_balance = \$1`).
		WithArgs(dec(debitAfter), sqlmock.AnyArg(), debit.accountNo, versionOf(debit)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET balance = \$1, cleared_balance = \$1`).
		WithArgs(dec(creditAfter), sqlmock.AnyArg(), credit.accountNo, versionOf(credit)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if id, ok := debit.walletID.(string); ok {
		mock.ExpectExec("UPDATE wallets SET balance").
			WithArgs(dec(debitAfter), sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	if id, ok := credit.walletID.(string); ok {
		mock.ExpectExec("UPDATE wallets SET balance").
			WithArgs(dec(creditAfter), sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs("COMPLETED", sqlmock.AnyArg(), sqlmock.AnyArg(), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func versionOf(a accountFixture) int {
	if a.version == 0 {
		return 1
	}
	return a.version
}

type loanFixture struct {
	id          string
	number      string
	accountNo   string
	principal   string
	rate        string
	accrued     string
	status      models.LoanStatus
	disbursed   any
	lastAccrual any
}

func loanRow(l loanFixture) *sqlmock.Rows {
	return sqlmock.NewRows(loanCols).AddRow(loanValues(l)...)
}

func loanValues(l loanFixture) []driver.Value {
	rate := l.rate
	if rate == "" {
		rate = "0.275"
	}
	accrued := l.accrued
	if accrued == "" {
		accrued = "0"
	}
	return []driver.Value{
		l.id, l.number, l.accountNo, l.principal, l.principal, rate, accrued, string(l.status),
		l.disbursed, l.lastAccrual, nil, "NGN", nil, fixedNow, fixedNow,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
