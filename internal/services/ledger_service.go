package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/ledger/internal/audit"
	"github.com/ruralpay/ledger/internal/interest"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Movement describes one double-entry money movement between two accounts
type Movement struct {
	DebitAccountNo  string
	CreditAccountNo string
	Amount          decimal.Decimal
	Type            models.TransactionType
	Reference       string
	Metadata        models.Metadata
	IdempotencyKey  *string
	// AllowOverdraft skips the debit-side sufficiency check
	AllowOverdraft bool
	// Currency, when set, must be the currency of both accounts
	Currency string
}

// movementKinds names the failures for each side of a movement, since
// funding speaks of source/destination where transfers speak of debit/credit.
type movementKinds struct {
	debitNotFound  MovementErrorKind
	creditNotFound MovementErrorKind
	previousFailed MovementErrorKind
	inFlight       MovementErrorKind
}

func kindsFor(t models.TransactionType) movementKinds {
	if t == models.TransactionTypeFunding {
		return movementKinds{ErrSourceAccountNotFound, ErrDestinationAccountNotFound, ErrPreviousFundingFailed, ErrFundingInFlight}
	}
	return movementKinds{ErrDebitAccountNotFound, ErrCreditAccountNotFound, ErrPreviousTransferFailed, ErrTransferInFlight}
}

type DoubleLedgerService struct {
	db           *sql.DB
	accounts     *repository.AccountRepository
	wallets      *repository.WalletRepository
	transactions *repository.TransactionRepository
	ledger       *repository.LedgerRepository
	audit        *audit.Logger
	log          *zap.Logger
	now          func() time.Time
}

func NewDoubleLedgerService(db *sql.DB, auditLog *audit.Logger) *DoubleLedgerService {
	if auditLog == nil {
		auditLog = audit.NewLogger(logger.Log)
	}
	return &DoubleLedgerService{
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		wallets:      repository.NewWalletRepository(db),
		transactions: repository.NewTransactionRepository(db),
		ledger:       repository.NewLedgerRepository(db),
		audit:        auditLog,
		log:          logger.Log.Named("ledger"),
		now:          time.Now,
	}
}

// Transfer moves funds between two accounts. The debit side must hold enough
// cleared balance. A non-empty idempotencyKey makes the call replay-safe.
func (s *DoubleLedgerService) Transfer(ctx context.Context, req models.TransferRequest, idempotencyKey string) (*models.MovementResult, error) {
	reference := req.Reference
	if reference == "" {
		reference = generateReference("TRF", 8)
	}

	return s.execute(ctx, Movement{
		DebitAccountNo:  req.DebitAccountNo,
		CreditAccountNo: req.CreditAccountNo,
		Amount:          req.Amount,
		Type:            models.TransactionTypeTransfer,
		Reference:       reference,
		Metadata:        req.Metadata,
		IdempotencyKey:  optionalKey(idempotencyKey),
	})
}

// execute runs a movement in its own unit of work with idempotency handling
func (s *DoubleLedgerService) execute(ctx context.Context, m Movement) (*models.MovementResult, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}

	kinds := kindsFor(m.Type)
	if m.IdempotencyKey != nil {
		existing, err := s.transactions.GetByIdempotencyKey(ctx, *m.IdempotencyKey)
		switch {
		case err == nil:
			return s.replay(existing, kinds)
		case !errors.Is(err, repository.ErrRecordNotFound):
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := s.TransferTx(ctx, tx, m)
	if err != nil {
		_ = tx.Rollback()
		s.recordFailure(ctx, m, err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("commit movement: %w", err)
		s.recordFailure(ctx, m, err)
		return nil, err
	}

	s.audit.LogMovement(result)
	s.log.Info("movement completed",
		zap.String("transaction_id", result.TransactionID),
		zap.String("type", string(m.Type)),
		zap.String("reference", result.Reference),
	)
	return result, nil
}

func (s *DoubleLedgerService) replay(existing *models.Transaction, kinds movementKinds) (*models.MovementResult, error) {
	switch existing.Status {
	case models.TransactionStatusCompleted:
		s.log.Info("idempotent replay", zap.String("transaction_id", existing.ID))
		return models.ResultFromTransaction(existing), nil
	case models.TransactionStatusFailed:
		msg := "previous attempt failed"
		if existing.ErrorMessage != nil && *existing.ErrorMessage != "" {
			msg = *existing.ErrorMessage
		}
		return nil, movementErr(kinds.previousFailed, msg)
	default:
		return nil, movementErr(kinds.inFlight, "a request with this idempotency key is still in progress")
	}
}

// TransferTx performs the movement inside tx. Both accounts are locked in
// account-number order, whatever their roles, before either balance is read.
func (s *DoubleLedgerService) TransferTx(ctx context.Context, tx *sql.Tx, m Movement) (*models.MovementResult, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	kinds := kindsFor(m.Type)

	// Lock accounts in consistent order to prevent deadlocks
	firstLock, secondLock := m.DebitAccountNo, m.CreditAccountNo
	if firstLock > secondLock {
		firstLock, secondLock = secondLock, firstLock
	}

	first, err := s.lockAccount(ctx, tx, firstLock, m, kinds)
	if err != nil {
		return nil, err
	}
	second, err := s.lockAccount(ctx, tx, secondLock, m, kinds)
	if err != nil {
		return nil, err
	}

	debit, credit := first, second
	if firstLock != m.DebitAccountNo {
		debit, credit = second, first
	}

	if debit.Currency != credit.Currency {
		return nil, movementErr(ErrCurrencyMismatch,
			fmt.Sprintf("cannot move %s funds into a %s account", debit.Currency, credit.Currency))
	}
	if m.Currency != "" && debit.Currency != m.Currency {
		return nil, movementErr(ErrCurrencyMismatch,
			fmt.Sprintf("accounts are in %s, expected %s", debit.Currency, m.Currency))
	}
	if !m.AllowOverdraft && debit.ClearedBalance.LessThan(m.Amount) {
		return nil, movementErr(ErrInsufficientBalance, "insufficient balance")
	}

	debitAfter := debit.ClearedBalance.Sub(m.Amount)
	creditAfter := credit.ClearedBalance.Add(m.Amount)
	now := s.now()

	txn := &models.Transaction{
		ID:                  uuid.NewString(),
		IdempotencyKey:      m.IdempotencyKey,
		TransactionType:     m.Type,
		Status:              models.TransactionStatusPending,
		Reference:           m.Reference,
		DebitAccountNo:      debit.AccountNo,
		CreditAccountNo:     credit.AccountNo,
		Amount:              m.Amount,
		DebitBalanceBefore:  debit.ClearedBalance,
		DebitBalanceAfter:   debitAfter,
		CreditBalanceBefore: credit.ClearedBalance,
		CreditBalanceAfter:  creditAfter,
		Metadata:            m.Metadata,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &MovementError{Kind: kinds.inFlight, Message: "duplicate idempotency key", Err: err}
		}
		return nil, err
	}

	entries := []*models.LedgerEntry{
		{
			ID:            uuid.NewString(),
			TransactionID: txn.ID,
			AccountNo:     debit.AccountNo,
			EntryType:     models.EntryTypeDebit,
			Amount:        m.Amount,
			BalanceBefore: debit.ClearedBalance,
			BalanceAfter:  debitAfter,
			CreatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			TransactionID: txn.ID,
			AccountNo:     credit.AccountNo,
			EntryType:     models.EntryTypeCredit,
			Amount:        m.Amount,
			BalanceBefore: credit.ClearedBalance,
			BalanceAfter:  creditAfter,
			CreatedAt:     now,
		},
	}
	if err := s.ledger.CreateBulk(ctx, tx, entries); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateBalance(ctx, tx, debit.AccountNo, debitAfter, debit.Version); err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateBalance(ctx, tx, credit.AccountNo, creditAfter, credit.Version); err != nil {
		return nil, err
	}

	if err := s.syncWallet(ctx, tx, debit, debitAfter); err != nil {
		return nil, err
	}
	if err := s.syncWallet(ctx, tx, credit, creditAfter); err != nil {
		return nil, err
	}

	if err := s.transactions.MarkCompleted(ctx, tx, txn.ID); err != nil {
		return nil, err
	}
	txn.Status = models.TransactionStatusCompleted

	return models.ResultFromTransaction(txn), nil
}

func (s *DoubleLedgerService) lockAccount(ctx context.Context, tx *sql.Tx, accountNo string, m Movement, kinds movementKinds) (*models.Account, error) {
	account, err := s.accounts.GetByAccountNoForUpdate(ctx, tx, accountNo)
	if errors.Is(err, repository.ErrRecordNotFound) {
		kind := kinds.creditNotFound
		if accountNo == m.DebitAccountNo {
			kind = kinds.debitNotFound
		}
		return nil, movementErr(kind, fmt.Sprintf("account %s not found", accountNo))
	}
	if err != nil {
		return nil, fmt.Errorf("lock account %s: %w", accountNo, err)
	}
	return account, nil
}

func (s *DoubleLedgerService) syncWallet(ctx context.Context, tx *sql.Tx, account *models.Account, balance decimal.Decimal) error {
	if account.WalletID == nil {
		return nil
	}
	return s.wallets.UpdateBalance(ctx, tx, *account.WalletID, balance)
}

// recordFailure leaves a FAILED row under the idempotency key after an
// infrastructure error so retries surface the failure instead of re-running.
// Refusals and cancellations leave nothing behind.
func (s *DoubleLedgerService) recordFailure(ctx context.Context, m Movement, cause error) {
	var movErr *MovementError
	if m.IdempotencyKey == nil || errors.As(cause, &movErr) ||
		errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		s.audit.LogError(string(m.Type), m.Reference, cause)
		return
	}

	msg := cause.Error()
	now := s.now()
	failed := &models.Transaction{
		ID:              uuid.NewString(),
		IdempotencyKey:  m.IdempotencyKey,
		TransactionType: m.Type,
		Status:          models.TransactionStatusFailed,
		Reference:       m.Reference,
		DebitAccountNo:  m.DebitAccountNo,
		CreditAccountNo: m.CreditAccountNo,
		Amount:          m.Amount,
		Metadata:        m.Metadata,
		ErrorMessage:    &msg,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.transactions.Create(writeCtx, nil, failed); err != nil {
		s.log.Warn("could not record failed movement",
			zap.String("idempotency_key", *m.IdempotencyKey),
			zap.Error(err),
		)
	}
	s.audit.LogError(string(m.Type), *m.IdempotencyKey, cause)
}

func (s *DoubleLedgerService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, movementErr(ErrTransactionNotFound, "transaction not found")
	}
	return txn, err
}

func (s *DoubleLedgerService) GetTransactionByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	txn, err := s.transactions.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, movementErr(ErrTransactionNotFound, "transaction not found")
	}
	return txn, err
}

func (s *DoubleLedgerService) GetLedgerEntries(ctx context.Context, transactionID string) ([]*models.LedgerEntry, error) {
	return s.ledger.ListByTransactionID(ctx, transactionID)
}

func (s *DoubleLedgerService) GetAccountLedger(ctx context.Context, accountNo string, limit int) ([]*models.LedgerEntry, error) {
	return s.ledger.ListByAccountNo(ctx, accountNo, clampLimit(limit))
}

func (s *DoubleLedgerService) GetAccountTransactions(ctx context.Context, accountNo string, limit int) ([]*models.Transaction, error) {
	return s.transactions.ListByAccountNo(ctx, accountNo, clampLimit(limit))
}

func validateMovement(m Movement) error {
	if !m.Amount.IsPositive() {
		return movementErr(ErrInvalidAmount, "amount must be greater than zero")
	}
	if !interest.HasPrecision(m.Amount, interest.AmountPlaces) {
		return movementErr(ErrInvalidAmount,
			fmt.Sprintf("amount cannot have more than %d decimal places", interest.AmountPlaces))
	}
	if m.DebitAccountNo == m.CreditAccountNo {
		return movementErr(ErrSameAccount, "cannot move funds to the same account")
	}
	return nil
}

// generateReference builds PREFIX-<base36 millis>-<random>
func generateReference(prefix string, randomLen int) string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:randomLen])
	return prefix + "-" + ts + "-" + random
}

func optionalKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
