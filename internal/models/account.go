package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a ledger account
type AccountType string

const (
	AccountTypeUserWallet      AccountType = "USER_WALLET"
	AccountTypePool            AccountType = "POOL"
	AccountTypeInterestExpense AccountType = "INTEREST_EXPENSE"
)

var accountPrefixes = map[AccountType]string{
	AccountTypeUserWallet:      "WAL",
	AccountTypePool:            "POL",
	AccountTypeInterestExpense: "IEX",
}

// Prefix returns the three letter account number prefix for the type
func (t AccountType) Prefix() string {
	return accountPrefixes[t]
}

func (t AccountType) Valid() bool {
	_, ok := accountPrefixes[t]
	return ok
}

// Account is a balance-holding ledger account. ClearedBalance is the
// figure debit checks are made against; Balance mirrors it.
type Account struct {
	ID             string          `json:"id" db:"id"`
	AccountType    AccountType     `json:"account_type" db:"account_type"`
	AccountName    string          `json:"account_name" db:"account_name"`
	AccountNo      string          `json:"account_no" db:"account_no"`
	Currency       string          `json:"currency" db:"currency"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	ClearedBalance decimal.Decimal `json:"cleared_balance" db:"cleared_balance"`
	WalletID       *string         `json:"wallet_id,omitempty" db:"wallet_id"`
	Version        int             `json:"version" db:"version"` // for optimistic locking
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Wallet is the user-facing projection of a USER_WALLET account
type Wallet struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	AccountNo *string         `json:"account_no,omitempty" db:"account_no"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Currency  string          `json:"currency" db:"currency"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateAccountRequest represents a new ledger account
type CreateAccountRequest struct {
	AccountType AccountType `json:"account_type" validate:"required,oneof=USER_WALLET POOL INTEREST_EXPENSE"`
	AccountName string      `json:"account_name" validate:"required,max=100"`
	Currency    string      `json:"currency" validate:"omitempty,len=3,uppercase"`
	WalletID    *string     `json:"wallet_id,omitempty" validate:"omitempty,uuid"`
}
