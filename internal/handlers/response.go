package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ruralpay/ledger/internal/jobs"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 1_048_576

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Code    string            `json:"code,omitempty"`    // Error kind
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper wraps a shared validator instance
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	sendError(w, statusCode, ErrorResponse{Error: message, Details: validationDetails(validationErr)})
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
	}
	return details
}

func sendError(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// decodeJSON reads exactly one JSON object into dst and validates it. It
// writes the error response itself and reports whether the handler may go on.
func (vh *ValidationHelper) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
			return false
		}
	} else if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := vh.ValidateStruct(dst); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

// writeServiceError maps engine error kinds onto HTTP status codes
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		movErr  *services.MovementError
		loanErr *services.LoanError
		accErr  *services.AccrualError
	)

	switch {
	case errors.As(err, &loanErr):
		sendError(w, loanStatus(loanErr.Kind), ErrorResponse{Error: loanErr.Message, Code: string(loanErr.Kind)})
	case errors.As(err, &accErr):
		sendError(w, accrualStatus(accErr.Kind), ErrorResponse{Error: accErr.Message, Code: string(accErr.Kind)})
	case errors.As(err, &movErr):
		sendError(w, movementStatus(movErr.Kind), ErrorResponse{Error: movErr.Message, Code: string(movErr.Kind)})
	case errors.Is(err, services.ErrAccountNotFound):
		sendError(w, http.StatusNotFound, ErrorResponse{Error: "Account not found", Code: "ACCOUNT_NOT_FOUND"})
	case errors.Is(err, services.ErrInvalidAccountType):
		sendError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ACCOUNT_TYPE"})
	case errors.Is(err, jobs.ErrSweepInProgress):
		sendError(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SWEEP_IN_PROGRESS"})
	default:
		logger.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		sendError(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func movementStatus(kind services.MovementErrorKind) int {
	switch kind {
	case services.ErrDebitAccountNotFound, services.ErrCreditAccountNotFound,
		services.ErrSourceAccountNotFound, services.ErrDestinationAccountNotFound,
		services.ErrWalletNotFound, services.ErrTransactionNotFound:
		return http.StatusNotFound
	case services.ErrInsufficientBalance:
		return http.StatusUnprocessableEntity
	case services.ErrPreviousTransferFailed, services.ErrPreviousFundingFailed,
		services.ErrTransferInFlight, services.ErrFundingInFlight:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func loanStatus(kind services.LoanErrorKind) int {
	switch kind {
	case services.LoanErrAccountNotFound, services.LoanErrLoanNotFound:
		return http.StatusNotFound
	case services.LoanErrInsufficientBalance:
		return http.StatusUnprocessableEntity
	case services.LoanErrInvalidStatus:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func accrualStatus(kind services.AccrualErrorKind) int {
	switch kind {
	case services.AccrualErrLoanNotFound:
		return http.StatusNotFound
	case services.AccrualErrInvalidStatus, services.AccrualErrLoanNotDisbursed:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// pageParams reads limit and offset, leaving bounds to the services
func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
