package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, account_type, account_name, account_no, currency, balance, cleared_balance, wallet_id, version, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row scanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.AccountType,
		&a.AccountName,
		&a.AccountNo,
		&a.Currency,
		&a.Balance,
		&a.ClearedBalance,
		&a.WalletID,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// NextSequence atomically issues the next number for a (type, currency) pair
func (r *AccountRepository) NextSequence(ctx context.Context, tx *sql.Tx, accountType models.AccountType, currency string) (int64, error) {
	const query = `
		INSERT INTO account_sequences (account_type, currency, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (account_type, currency)
		DO UPDATE SET last_value = account_sequences.last_value + 1
		RETURNING last_value`

	var next int64
	if err := conn(r.db, tx).QueryRowContext(ctx, query, accountType, currency).Scan(&next); err != nil {
		return 0, fmt.Errorf("next account sequence: %w", err)
	}
	return next, nil
}

func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, account *models.Account) error {
	const query = `
		INSERT INTO accounts (id, account_type, account_name, account_no, currency, balance, cleared_balance, wallet_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		account.ID,
		account.AccountType,
		account.AccountName,
		account.AccountNo,
		account.Currency,
		account.Balance,
		account.ClearedBalance,
		account.WalletID,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByAccountNo(ctx context.Context, accountNo string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNo))
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

// GetByAccountNoForUpdate row-locks the account until tx ends
func (r *AccountRepository) GetByAccountNoForUpdate(ctx context.Context, tx *sql.Tx, accountNo string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1 FOR UPDATE`

	account, err := scanAccount(tx.QueryRowContext(ctx, query, accountNo))
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

func (r *AccountRepository) List(ctx context.Context, accountType models.AccountType, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE ($1::text = '' OR account_type = $1)
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, string(accountType), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateBalance writes both balance columns. The version must match what was
// read under lock, otherwise ErrOptimisticLock is returned.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, accountNo string, newBalance decimal.Decimal, version int) error {
	const query = `
		UPDATE accounts
		SET balance = $1, cleared_balance = $1, version = version + 1, updated_at = $2
		WHERE account_no = $3 AND version = $4`

	res, err := tx.ExecContext(ctx, query, newBalance, time.Now(), accountNo, version)
	if err != nil {
		return fmt.Errorf("update balance for %s: %w", accountNo, err)
	}
	if err := expectOneRow(res, ErrOptimisticLock); err != nil {
		return fmt.Errorf("update balance for %s: %w", accountNo, err)
	}
	return nil
}
