package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create transaction: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestAccountRepository_NextSequence(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`INSERT INTO account_sequences .* ON CONFLICT \(account_type, currency\)`).
		WithArgs("POOL", "NGN").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

	seq, err := repo.NextSequence(context.Background(), nil, models.AccountTypePool, "NGN")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByAccountNo_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`FROM accounts WHERE account_no = \$1`).
		WithArgs("WALNGN0000001").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByAccountNo(context.Background(), "WALNGN0000001")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdateBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the version", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE accounts SET balance = \$1, cleared_balance = \$1, version = version \+ 1`).
			WithArgs("7000", sqlmock.AnyArg(), "WALNGN0000001", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		require.NoError(t, repo.UpdateBalance(ctx, tx, "WALNGN0000001", decimal.RequireFromString("7000"), 3))
		require.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE accounts").
			WithArgs("7000", sqlmock.AnyArg(), "WALNGN0000001", 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.UpdateBalance(ctx, tx, "WALNGN0000001", decimal.RequireFromString("7000"), 3)
		assert.ErrorIs(t, err, ErrOptimisticLock)
		require.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_CreateBulk(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLedgerRepository(db)
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	entries := []*models.LedgerEntry{
		{ID: "e1", TransactionID: "tx-1", AccountNo: "POLNGN0000001", EntryType: models.EntryTypeDebit,
			Amount: decimal.NewFromInt(10), BalanceBefore: decimal.NewFromInt(10), BalanceAfter: decimal.Zero, CreatedAt: now},
		{ID: "e2", TransactionID: "tx-1", AccountNo: "WALNGN0000001", EntryType: models.EntryTypeCredit,
			Amount: decimal.NewFromInt(10), BalanceBefore: decimal.Zero, BalanceAfter: decimal.NewFromInt(10), CreatedAt: now},
	}

	mock.ExpectExec(`INSERT INTO ledger_entries .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\), \(\$9, \$10, \$11, \$12, \$13, \$14, \$15, \$16\)`).
		WithArgs(
			"e1", "tx-1", "POLNGN0000001", "DEBIT", "10", "10", "0", now,
			"e2", "tx-1", "WALNGN0000001", "CREDIT", "10", "0", "10", now,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.CreateBulk(context.Background(), nil, entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_CreateBulk_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLedgerRepository(db)

	require.NoError(t, repo.CreateBulk(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_MarkCompleted_NotPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(`UPDATE transactions SET status = \$1`).
		WithArgs("COMPLETED", sqlmock.AnyArg(), "tx-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(context.Background(), nil, "tx-1")
	assert.ErrorIs(t, err, ErrOptimisticLock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_Activate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLoanRepository(db)
	at := time.Date(2024, 2, 27, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE loans SET status = \$1, disbursement_date = \$2`).
		WithArgs("ACTIVE", at, sqlmock.AnyArg(), "loan-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.Activate(context.Background(), tx, "loan-1", at)
	assert.ErrorIs(t, err, ErrOptimisticLock)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrualRepository_GetByLoanAndDate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccrualRepository(db)
	d := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM daily_interest_accruals WHERE loan_id = \$1 AND accrual_date = \$2`).
		WithArgs("loan-1", d).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "accrual_date", "principal_balance", "daily_rate",
			"interest_amount", "days_in_year", "cumulative_interest", "created_at"}).
			AddRow("acc-1", "loan-1", d, "10000", "0.000751366120", "7.5137", 366, "22.5411", d))

	accrual, err := repo.GetByLoanAndDate(context.Background(), nil, "loan-1", d)
	require.NoError(t, err)
	assert.Equal(t, 366, accrual.DaysInYear)
	assert.True(t, accrual.CumulativeInterest.Equal(decimal.RequireFromString("22.5411")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
