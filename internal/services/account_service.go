package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountType = errors.New("invalid account type")
)

type AccountService struct {
	db       *sql.DB
	accounts *repository.AccountRepository
	wallets  *repository.WalletRepository
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:       db,
		accounts: repository.NewAccountRepository(db),
		wallets:  repository.NewWalletRepository(db),
	}
}

// FormatAccountNumber renders <PREFIX><CURRENCY><7 digit sequence>
func FormatAccountNumber(accountType models.AccountType, currency string, seq int64) string {
	return fmt.Sprintf("%s%s%07d", accountType.Prefix(), currency, seq)
}

// CreateAccount opens a zero-balance account. The number is drawn from the
// per type/currency counter in the same unit as the insert, and a supplied
// wallet is linked to the new account.
func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, req.AccountType)
	}

	currency := req.Currency
	if currency == "" {
		currency = viper.GetString("ledger.default_currency")
	}
	if currency == "" {
		currency = "NGN"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := s.accounts.NextSequence(ctx, tx, req.AccountType, currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &models.Account{
		ID:             uuid.NewString(),
		AccountType:    req.AccountType,
		AccountName:    req.AccountName,
		AccountNo:      FormatAccountNumber(req.AccountType, currency, seq),
		Currency:       currency,
		Balance:        decimal.Zero,
		ClearedBalance: decimal.Zero,
		WalletID:       req.WalletID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if req.WalletID != nil {
		if err := s.wallets.SetAccountNo(ctx, tx, *req.WalletID, account.AccountNo); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit account: %w", err)
	}

	logger.Log.Info("account created",
		zap.String("account_no", account.AccountNo),
		zap.String("account_type", string(account.AccountType)),
	)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountNo string) (*models.Account, error) {
	account, err := s.accounts.GetByAccountNo(ctx, accountNo)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	return account, err
}

func (s *AccountService) ListAccounts(ctx context.Context, accountType models.AccountType, limit, offset int) ([]*models.Account, error) {
	if offset < 0 {
		offset = 0
	}
	return s.accounts.List(ctx, accountType, clampLimit(limit), offset)
}
