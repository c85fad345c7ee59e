package apperror

import (
	"fmt"
	"net/http"
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

// ---- Ledger (LED) ----

func ErrInvalidAmount() *AppError {
	return New("LED_001", "Amount must be positive", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("LED_002", "Insufficient account balance", http.StatusPaymentRequired)
}

func ErrContention(err error) *AppError {
	return Wrap("LED_003", "Balance update conflict, please retry", http.StatusServiceUnavailable, err)
}

// ---- Marketplace & Settlement (MKT) ----

func ErrListingUnavailable() *AppError {
	return New("MKT_001", "Listing is not available for purchase", http.StatusConflict)
}

func ErrInvalidPurchase() *AppError {
	return New("MKT_002", "Invalid purchase", http.StatusBadRequest)
}

func ErrPriceMismatch() *AppError {
	return New("MKT_003", "Listing price has changed", http.StatusConflict)
}

func ErrAlreadyPurchased() *AppError {
	return New("MKT_004", "Listing already purchased", http.StatusConflict)
}

// ---- Payment Requests (REQ) ----

func ErrAlreadyProcessed() *AppError {
	return New("REQ_001", "Payment request has already been processed", http.StatusConflict)
}

func ErrMissingBankInfo() *AppError {
	return New("REQ_002", "Bank information is required for withdrawal", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email is already registered", http.StatusConflict)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_003", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_004", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Insufficient permissions", http.StatusForbidden)
}

func ErrAccountSuspended() *AppError {
	return New("AUTH_006", "Account is suspended", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Generic ----

func ErrNotFound(entity string) *AppError {
	return New("GEN_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("GEN_002", message, http.StatusBadRequest)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_002", "Internal database error", http.StatusInternalServerError, err)
}
