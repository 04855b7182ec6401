package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----
// Rejected before any side effect.

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be strictly positive", http.StatusBadRequest)
}

func Validation(message string) *AppError {
	return New("VAL_002", message, http.StatusBadRequest)
}

func ErrUnknownSequenceKey(key string) *AppError {
	return New("VAL_003", fmt.Sprintf("No code prefix registered for key %q", key), http.StatusBadRequest)
}

// ---- Conflict (CNF) ----
// Rejected atomically, no partial write.

func ErrInsufficientFunds() *AppError {
	return New("CNF_001", "Insufficient balance in wallet", http.StatusConflict)
}

func ErrAliasConflict(value string) *AppError {
	return New("CNF_002", fmt.Sprintf("Alias %q is already bound to another wallet", value), http.StatusConflict)
}

func ErrSequenceExhausted(key string) *AppError {
	return New("CNF_003", fmt.Sprintf("Routing code sequence exhausted for key %q", key), http.StatusConflict)
}

func ErrFeesExceedGross() *AppError {
	return New("CNF_004", "Total fees meet or exceed gross amount", http.StatusConflict)
}

func ErrDuplicateBatch() *AppError {
	return New("CNF_005", "A batch already exists for this operator and period", http.StatusConflict)
}

// ---- Policy (POL) ----
// Rejected with a structured reason so an operator UI can explain.

func ErrInvalidTransition(from, to string) *AppError {
	return New("POL_001", fmt.Sprintf("Cannot transition from %s to %s", from, to), http.StatusUnprocessableEntity)
}

func ErrApprovalBlocked(reasons []string) *AppError {
	return New("POL_002", "Approval blocked: "+strings.Join(reasons, "; "), http.StatusUnprocessableEntity)
}

func ErrNoDispatchableItems() *AppError {
	return New("POL_003", "Batch has no non-blocked items", http.StatusUnprocessableEntity)
}

func ErrPaymentNotQuarantined() *AppError {
	return New("POL_004", "Payment is not in a quarantined state", http.StatusUnprocessableEntity)
}

func ErrPaymentRejected() *AppError {
	return New("POL_005", "Payment was rejected and can no longer be credited", http.StatusUnprocessableEntity)
}

// ---- External provider (EXT) ----
// Triggers retry/backoff, not immediate failure.

func ErrProviderUnavailable(err error) *AppError {
	return Wrap("EXT_001", "Disbursement provider unreachable", http.StatusBadGateway, err)
}

func ErrProviderRejected(description string) *AppError {
	return New("EXT_002", "Disbursement provider rejected request: "+description, http.StatusBadGateway)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Insufficient role for this action", http.StatusForbidden)
}

// ---- System & Infrastructure (SYS) ----

func ErrNotFound(entity string) *AppError {
	return New("SYS_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
