package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	const query = `
		SELECT id, user_id, account_no, balance, currency, created_at, updated_at
		FROM wallets WHERE id = $1`

	var w models.Wallet
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.AccountNo, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// UpdateBalance resynchronizes the cached wallet balance with its account
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id string, balance decimal.Decimal) error {
	const query = `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`

	if _, err := conn(r.db, tx).ExecContext(ctx, query, balance, time.Now(), id); err != nil {
		return fmt.Errorf("sync wallet %s: %w", id, err)
	}
	return nil
}

func (r *WalletRepository) SetAccountNo(ctx context.Context, tx *sql.Tx, id, accountNo string) error {
	const query = `UPDATE wallets SET account_no = $1, updated_at = $2 WHERE id = $3`

	res, err := conn(r.db, tx).ExecContext(ctx, query, accountNo, time.Now(), id)
	if err != nil {
		return fmt.Errorf("link wallet %s: %w", id, err)
	}
	return expectOneRow(res, ErrRecordNotFound)
}
