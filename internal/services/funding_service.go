package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/repository"
)

// FundingService tops up accounts from a funding source. The source may go
// negative, which is how a pool records money it has paid out.
type FundingService struct {
	ledger  *DoubleLedgerService
	wallets *repository.WalletRepository
}

func NewFundingService(ledger *DoubleLedgerService) *FundingService {
	return &FundingService{
		ledger:  ledger,
		wallets: ledger.wallets,
	}
}

func (s *FundingService) FundAccount(ctx context.Context, req models.FundAccountRequest, idempotencyKey string) (*models.MovementResult, error) {
	reference := req.Reference
	if reference == "" {
		reference = generateReference("FND", 8)
	}

	return s.ledger.execute(ctx, Movement{
		DebitAccountNo:  req.SourceAccountNo,
		CreditAccountNo: req.AccountNo,
		Amount:          req.Amount,
		Type:            models.TransactionTypeFunding,
		Reference:       reference,
		Metadata:        req.Metadata,
		IdempotencyKey:  optionalKey(idempotencyKey),
		AllowOverdraft:  true,
	})
}

// FundWallet resolves the wallet's linked account and funds it
func (s *FundingService) FundWallet(ctx context.Context, req models.FundWalletRequest, idempotencyKey string) (*models.MovementResult, error) {
	wallet, err := s.wallets.GetByID(ctx, req.WalletID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, movementErr(ErrWalletNotFound, "wallet not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	if wallet.AccountNo == nil || *wallet.AccountNo == "" {
		return nil, movementErr(ErrNoAccount, "wallet has no associated account")
	}

	return s.FundAccount(ctx, models.FundAccountRequest{
		AccountNo:       *wallet.AccountNo,
		SourceAccountNo: req.SourceAccountNo,
		Amount:          req.Amount,
		Reference:       req.Reference,
		Metadata:        req.Metadata,
	}, idempotencyKey)
}
