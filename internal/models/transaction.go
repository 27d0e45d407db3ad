package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTransfer     TransactionType = "TRANSFER"
	TransactionTypeFunding      TransactionType = "FUNDING"
	TransactionTypeDisbursement TransactionType = "DISBURSEMENT"
	TransactionTypeInterest     TransactionType = "INTEREST"
)

// TransactionStatus moves PENDING -> COMPLETED | FAILED and never back
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is the header record of one money movement
type Transaction struct {
	ID                  string            `json:"id" db:"id"`
	IdempotencyKey      *string           `json:"idempotency_key,omitempty" db:"idempotency_key"`
	TransactionType     TransactionType   `json:"transaction_type" db:"transaction_type"`
	Status              TransactionStatus `json:"status" db:"status"`
	Reference           string            `json:"reference" db:"reference"`
	DebitAccountNo      string            `json:"debit_account_no" db:"debit_account_no"`
	CreditAccountNo     string            `json:"credit_account_no" db:"credit_account_no"`
	Amount              decimal.Decimal   `json:"amount" db:"amount"`
	DebitBalanceBefore  decimal.Decimal   `json:"debit_balance_before" db:"debit_balance_before"`
	DebitBalanceAfter   decimal.Decimal   `json:"debit_balance_after" db:"debit_balance_after"`
	CreditBalanceBefore decimal.Decimal   `json:"credit_balance_before" db:"credit_balance_before"`
	CreditBalanceAfter  decimal.Decimal   `json:"credit_balance_after" db:"credit_balance_after"`
	Metadata            Metadata          `json:"metadata,omitempty" db:"metadata"`
	ErrorMessage        *string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt           time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at" db:"updated_at"`
}

// Metadata type for JSONB fields
type Metadata map[string]any

// Value implements driver.Valuer for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for Metadata
func (m *Metadata) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("metadata: unsupported scan type")
	}
}

// AccountLeg is one side of a completed movement
type AccountLeg struct {
	AccountNo     string          `json:"account_no"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// MovementResult is returned by transfers, funding and disbursement. A replay
// under the same idempotency key returns the stored figures unchanged.
type MovementResult struct {
	TransactionID string            `json:"transaction_id"`
	Reference     string            `json:"reference"`
	Type          TransactionType   `json:"transaction_type"`
	Status        TransactionStatus `json:"status"`
	DebitAccount  AccountLeg        `json:"debit_account"`
	CreditAccount AccountLeg        `json:"credit_account"`
	Amount        decimal.Decimal   `json:"amount"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ResultFromTransaction rebuilds a movement result from a stored transaction
func ResultFromTransaction(tx *Transaction) *MovementResult {
	return &MovementResult{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		Type:          tx.TransactionType,
		Status:        tx.Status,
		DebitAccount: AccountLeg{
			AccountNo:     tx.DebitAccountNo,
			BalanceBefore: tx.DebitBalanceBefore,
			BalanceAfter:  tx.DebitBalanceAfter,
		},
		CreditAccount: AccountLeg{
			AccountNo:     tx.CreditAccountNo,
			BalanceBefore: tx.CreditBalanceBefore,
			BalanceAfter:  tx.CreditBalanceAfter,
		},
		Amount:    tx.Amount,
		CreatedAt: tx.CreatedAt,
	}
}

// TransferRequest represents an account to account transfer
type TransferRequest struct {
	DebitAccountNo  string          `json:"debit_account_no" validate:"required,max=30"`
	CreditAccountNo string          `json:"credit_account_no" validate:"required,max=30"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference" validate:"max=100"`
	Metadata        Metadata        `json:"metadata"`
}

// FundAccountRequest tops up an account from a source, usually a pool
type FundAccountRequest struct {
	AccountNo       string          `json:"account_no" validate:"required,max=30"`
	SourceAccountNo string          `json:"source_account_no" validate:"required,max=30"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference" validate:"max=100"`
	Metadata        Metadata        `json:"metadata"`
}

// FundWalletRequest tops up the account linked to a wallet
type FundWalletRequest struct {
	WalletID        string          `json:"wallet_id" validate:"required,uuid"`
	SourceAccountNo string          `json:"source_account_no" validate:"required,max=30"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference" validate:"max=100"`
	Metadata        Metadata        `json:"metadata"`
}
