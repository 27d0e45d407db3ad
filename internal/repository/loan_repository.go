package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/shopspring/decimal"
)

const loanColumns = `id, loan_number, account_no, principal_amount, outstanding_principal, interest_rate, accrued_interest, status,
	disbursement_date, last_accrual_date, maturity_date, currency, metadata, created_at, updated_at`

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func scanLoan(row scanner) (*models.Loan, error) {
	var l models.Loan
	err := row.Scan(
		&l.ID,
		&l.LoanNumber,
		&l.AccountNo,
		&l.PrincipalAmount,
		&l.OutstandingPrincipal,
		&l.InterestRate,
		&l.AccruedInterest,
		&l.Status,
		&l.DisbursementDate,
		&l.LastAccrualDate,
		&l.MaturityDate,
		&l.Currency,
		&l.Metadata,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	const query = `
		INSERT INTO loans (id, loan_number, account_no, principal_amount, outstanding_principal, interest_rate, accrued_interest,
			status, maturity_date, currency, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanNumber,
		loan.AccountNo,
		loan.PrincipalAmount,
		loan.OutstandingPrincipal,
		loan.InterestRate,
		loan.AccruedInterest,
		loan.Status,
		loan.MaturityDate,
		loan.Currency,
		loan.Metadata,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return loan, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := scanLoan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return loan, nil
}

// Activate moves a PENDING loan to ACTIVE and stamps the disbursement date
func (r *LoanRepository) Activate(ctx context.Context, tx *sql.Tx, id string, disbursedAt time.Time) error {
	const query = `
		UPDATE loans SET status = $1, disbursement_date = $2, updated_at = $3
		WHERE id = $4 AND status = $5`

	res, err := tx.ExecContext(ctx, query,
		models.LoanStatusActive, disbursedAt, time.Now(), id, models.LoanStatusPending)
	if err != nil {
		return fmt.Errorf("activate loan %s: %w", id, err)
	}
	if err := expectOneRow(res, ErrOptimisticLock); err != nil {
		return fmt.Errorf("activate loan %s: %w", id, err)
	}
	return nil
}

func (r *LoanRepository) UpdateAccrual(ctx context.Context, tx *sql.Tx, id string, accrued decimal.Decimal, accrualDate time.Time) error {
	const query = `
		UPDATE loans SET accrued_interest = $1, last_accrual_date = $2, updated_at = $3
		WHERE id = $4`

	res, err := tx.ExecContext(ctx, query, accrued, accrualDate, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update accrual for loan %s: %w", id, err)
	}
	return expectOneRow(res, ErrRecordNotFound)
}

// ListActive returns every ACTIVE loan, oldest first
func (r *LoanRepository) ListActive(ctx context.Context) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, models.LoanStatusActive)
}

func (r *LoanRepository) ListByAccountNo(ctx context.Context, accountNo string) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE account_no = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, accountNo)
}

func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *LoanRepository) list(ctx context.Context, query string, args ...any) ([]*models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
