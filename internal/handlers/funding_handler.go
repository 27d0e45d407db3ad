package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/ledger/internal/models"
)

type FundingService interface {
	FundAccount(ctx context.Context, req models.FundAccountRequest, idempotencyKey string) (*models.MovementResult, error)
	FundWallet(ctx context.Context, req models.FundWalletRequest, idempotencyKey string) (*models.MovementResult, error)
}

type FundingHandler struct {
	service   FundingService
	validator *ValidationHelper
}

func NewFundingHandler(service FundingService) *FundingHandler {
	return &FundingHandler{
		service:   service,
		validator: NewValidationHelper(),
	}
}

func (h *FundingHandler) Routes(r chi.Router) {
	r.Post("/funding/accounts", h.FundAccount)
	r.Post("/funding/wallets", h.FundWallet)
}

func (h *FundingHandler) FundAccount(w http.ResponseWriter, r *http.Request) {
	var req models.FundAccountRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.service.FundAccount(r.Context(), req, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

func (h *FundingHandler) FundWallet(w http.ResponseWriter, r *http.Request) {
	var req models.FundWalletRequest
	if !h.validator.decodeJSON(w, r, &req, false) {
		return
	}

	result, err := h.service.FundWallet(r.Context(), req, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}
