package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ruralpay/ledger/internal/models"
)

const ledgerColumns = `id, transaction_id, account_no, entry_type, amount, balance_before, balance_after, created_at`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func scanLedgerEntry(row scanner) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.TransactionID,
		&e.AccountNo,
		&e.EntryType,
		&e.Amount,
		&e.BalanceBefore,
		&e.BalanceAfter,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateBulk appends all entries in a single statement
func (r *LedgerRepository) CreateBulk(ctx context.Context, tx *sql.Tx, entries []*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO ledger_entries (` + ledgerColumns + `) VALUES `)

	args := make([]any, 0, len(entries)*8)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
		args = append(args, e.ID, e.TransactionID, e.AccountNo, e.EntryType, e.Amount, e.BalanceBefore, e.BalanceAfter, e.CreatedAt)
	}

	if _, err := conn(r.db, tx).ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("create ledger entries: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE transaction_id = $1 ORDER BY entry_type DESC`
	return r.list(ctx, query, transactionID)
}

func (r *LedgerRepository) ListByAccountNo(ctx context.Context, accountNo string, limit int) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE account_no = $1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, accountNo, limit)
}

func (r *LedgerRepository) list(ctx context.Context, query string, args ...any) ([]*models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
