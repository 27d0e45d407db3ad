package handlers

import (
	"context"
	"time"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountNo string) (*models.Account, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, accountType models.AccountType, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, accountType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Transfer(ctx context.Context, req models.TransferRequest, idempotencyKey string) (*models.MovementResult, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementResult), args.Error(1)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetLedgerEntries(ctx context.Context, transactionID string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetAccountLedger(ctx context.Context, accountNo string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountNo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetAccountTransactions(ctx context.Context, accountNo string, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, accountNo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type MockFundingService struct {
	mock.Mock
}

func (m *MockFundingService) FundAccount(ctx context.Context, req models.FundAccountRequest, idempotencyKey string) (*models.MovementResult, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementResult), args.Error(1)
}

func (m *MockFundingService) FundWallet(ctx context.Context, req models.FundWalletRequest, idempotencyKey string) (*models.MovementResult, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementResult), args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, req models.CreateLoanRequest) (*models.Loan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanService) DisburseLoan(ctx context.Context, req models.DisburseLoanRequest) (*models.DisbursementResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DisbursementResult), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, limit, offset int) ([]*models.Loan, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoansByAccount(ctx context.Context, accountNo string) ([]*models.Loan, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoanService) GetLoanAccrualHistory(ctx context.Context, loanID string, limit int) ([]*models.DailyInterestAccrual, error) {
	args := m.Called(ctx, loanID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DailyInterestAccrual), args.Error(1)
}

type MockAccrualTrigger struct {
	mock.Mock
}

func (m *MockAccrualTrigger) RunNow(ctx context.Context, asOf time.Time) (*models.AccrualSweepResult, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccrualSweepResult), args.Error(1)
}

func (m *MockAccrualTrigger) RunLoan(ctx context.Context, loanID string, date time.Time) (*models.DailyInterestAccrual, error) {
	args := m.Called(ctx, loanID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyInterestAccrual), args.Error(1)
}
