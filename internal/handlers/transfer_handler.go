package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/ledger/internal/models"
)

// IdempotencyKeyHeader carries the client chosen key for money movements
const IdempotencyKeyHeader = "Idempotency-Key"

type TransferService interface {
	Transfer(ctx context.Context, req models.TransferRequest, idempotencyKey string) (*models.MovementResult, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	GetLedgerEntries(ctx context.Context, transactionID string) ([]*models.LedgerEntry, error)
}

type TransferHandler struct {
	service   TransferService
	validator *ValidationHelper
}

func NewTransferHandler(service TransferService) *TransferHandler {
	return &TransferHandler{
		service:   service,
		validator: NewValidationHelper(),
	}
}

func (h *TransferHandler) Routes(r chi.Router) {
	r.Post("/transfers", h.Transfer)
	r.Get("/transactions/{id}", h.GetTransaction)
}

// Transfer moves funds between two accounts. Retrying with the same
// Idempotency-Key returns the original result.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.service.Transfer(r.Context(), req, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// GetTransaction returns the header record with its two ledger entries
func (h *TransferHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	txn, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entries, err := h.service.GetLedgerEntries(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"transaction": txn,
		"entries":     entries,
	})
}
