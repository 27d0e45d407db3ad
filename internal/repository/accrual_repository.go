package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ruralpay/ledger/internal/models"
)

const accrualColumns = `id, loan_id, accrual_date, principal_balance, daily_rate, interest_amount, days_in_year, cumulative_interest, created_at`

type AccrualRepository struct {
	db *sql.DB
}

func NewAccrualRepository(db *sql.DB) *AccrualRepository {
	return &AccrualRepository{db: db}
}

func scanAccrual(row scanner) (*models.DailyInterestAccrual, error) {
	var a models.DailyInterestAccrual
	err := row.Scan(
		&a.ID,
		&a.LoanID,
		&a.AccrualDate,
		&a.PrincipalBalance,
		&a.DailyRate,
		&a.InterestAmount,
		&a.DaysInYear,
		&a.CumulativeInterest,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccrualRepository) GetByLoanAndDate(ctx context.Context, tx *sql.Tx, loanID string, date time.Time) (*models.DailyInterestAccrual, error) {
	query := `SELECT ` + accrualColumns + ` FROM daily_interest_accruals WHERE loan_id = $1 AND accrual_date = $2`

	a, err := scanAccrual(conn(r.db, tx).QueryRowContext(ctx, query, loanID, date))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AccrualRepository) Create(ctx context.Context, tx *sql.Tx, a *models.DailyInterestAccrual) error {
	query := `INSERT INTO daily_interest_accruals (` + accrualColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		a.ID,
		a.LoanID,
		a.AccrualDate,
		a.PrincipalBalance,
		a.DailyRate,
		a.InterestAmount,
		a.DaysInYear,
		a.CumulativeInterest,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create accrual: %w", err)
	}
	return nil
}

// ListByLoan returns the most recent accruals first
func (r *AccrualRepository) ListByLoan(ctx context.Context, loanID string, limit int) ([]*models.DailyInterestAccrual, error) {
	query := `SELECT ` + accrualColumns + ` FROM daily_interest_accruals
		WHERE loan_id = $1 ORDER BY accrual_date DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, loanID, limit)
	if err != nil {
		return nil, fmt.Errorf("list accruals: %w", err)
	}
	defer rows.Close()

	var accruals []*models.DailyInterestAccrual
	for rows.Next() {
		a, err := scanAccrual(rows)
		if err != nil {
			return nil, fmt.Errorf("scan accrual: %w", err)
		}
		accruals = append(accruals, a)
	}
	return accruals, rows.Err()
}
