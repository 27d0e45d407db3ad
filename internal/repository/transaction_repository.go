package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/models"
)

const transactionColumns = `id, idempotency_key, transaction_type, status, reference, debit_account_no, credit_account_no, amount,
	debit_balance_before, debit_balance_after, credit_balance_before, credit_balance_after, metadata, error_message, created_at, updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.IdempotencyKey,
		&t.TransactionType,
		&t.Status,
		&t.Reference,
		&t.DebitAccountNo,
		&t.CreditAccountNo,
		&t.Amount,
		&t.DebitBalanceBefore,
		&t.DebitBalanceAfter,
		&t.CreditBalanceBefore,
		&t.CreditBalanceAfter,
		&t.Metadata,
		&t.ErrorMessage,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the transaction header with whatever status it carries.
// A duplicate idempotency key surfaces as a unique violation.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	const query = `
		INSERT INTO transactions (id, idempotency_key, transaction_type, status, reference, debit_account_no, credit_account_no, amount,
			debit_balance_before, debit_balance_after, credit_balance_before, credit_balance_after, metadata, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		t.ID,
		t.IdempotencyKey,
		t.TransactionType,
		t.Status,
		t.Reference,
		t.DebitAccountNo,
		t.CreditAccountNo,
		t.Amount,
		t.DebitBalanceBefore,
		t.DebitBalanceAfter,
		t.CreditBalanceBefore,
		t.CreditBalanceAfter,
		t.Metadata,
		t.ErrorMessage,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// MarkCompleted moves a PENDING transaction to COMPLETED
func (r *TransactionRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, id string) error {
	const query = `
		UPDATE transactions SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	res, err := conn(r.db, tx).ExecContext(ctx, query,
		models.TransactionStatusCompleted, time.Now(), id, models.TransactionStatusPending)
	if err != nil {
		return fmt.Errorf("complete transaction %s: %w", id, err)
	}
	if err := expectOneRow(res, ErrOptimisticLock); err != nil {
		return fmt.Errorf("complete transaction %s: %w", id, err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// ListByAccountNo returns the newest transactions touching an account on either side
func (r *TransactionRepository) ListByAccountNo(ctx context.Context, accountNo string, limit int) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE debit_account_no = $1 OR credit_account_no = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountNo, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
