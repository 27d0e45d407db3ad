package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/ledger/internal/models"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, accountNo string) (*models.Account, error)
	ListAccounts(ctx context.Context, accountType models.AccountType, limit, offset int) ([]*models.Account, error)
}

// AccountHistory is the read side of the ledger scoped to one account
type AccountHistory interface {
	GetAccountLedger(ctx context.Context, accountNo string, limit int) ([]*models.LedgerEntry, error)
	GetAccountTransactions(ctx context.Context, accountNo string, limit int) ([]*models.Transaction, error)
}

type AccountHandler struct {
	accounts  AccountService
	history   AccountHistory
	validator *ValidationHelper
}

func NewAccountHandler(accounts AccountService, history AccountHistory) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		history:   history,
		validator: NewValidationHelper(),
	}
}

func (h *AccountHandler) Routes(r chi.Router) {
	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts", h.ListAccounts)
	r.Get("/accounts/{accountNo}", h.GetAccount)
	r.Get("/accounts/{accountNo}/ledger", h.GetAccountLedger)
	r.Get("/accounts/{accountNo}/transactions", h.GetAccountTransactions)
}

// CreateAccount opens a ledger account
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "accountNo"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, account)
}

// ListAccounts supports ?type=POOL plus limit/offset paging
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accountType := models.AccountType(r.URL.Query().Get("type"))
	if accountType != "" && !accountType.Valid() {
		SendErrorResponse(w, "Unknown account type", http.StatusBadRequest, nil)
		return
	}

	limit, offset := pageParams(r)
	accounts, err := h.accounts.ListAccounts(r.Context(), accountType, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccountLedger(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)
	entries, err := h.history.GetAccountLedger(r.Context(), chi.URLParam(r, "accountNo"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, entries)
}

func (h *AccountHandler) GetAccountTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)
	txns, err := h.history.GetAccountTransactions(r.Context(), chi.URLParam(r, "accountNo"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, txns)
}
