package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_002", "Insufficient account balance", http.StatusPaymentRequired),
			expected: "[LED_002] Insufficient account balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_002", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_002] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("LED_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(), "LED_001", 400},
		{"InsufficientBalance", ErrInsufficientBalance(), "LED_002", 402},
		{"Contention", ErrContention(fmt.Errorf("cas retries exhausted")), "LED_003", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestMarketplaceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"ListingUnavailable", ErrListingUnavailable(), "MKT_001", 409},
		{"InvalidPurchase", ErrInvalidPurchase(), "MKT_002", 400},
		{"PriceMismatch", ErrPriceMismatch(), "MKT_003", 409},
		{"AlreadyPurchased", ErrAlreadyPurchased(), "MKT_004", 409},
		{"AlreadyProcessed", ErrAlreadyProcessed(), "REQ_001", 409},
		{"MissingBankInfo", ErrMissingBankInfo(), "REQ_002", 400},
		{"NotFound", ErrNotFound("Listing"), "GEN_001", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"EmailExists", ErrEmailExists(), "AUTH_002", 409},
		{"UsernameExists", ErrUsernameExists(), "AUTH_003", 409},
		{"InvalidToken", ErrInvalidToken(), "AUTH_004", 401},
		{"Forbidden", ErrForbidden(), "AUTH_005", 403},
		{"AccountSuspended", ErrAccountSuspended(), "AUTH_006", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_002", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	intErr := InternalError(inner)
	assert.Equal(t, "SYS_001", intErr.Code)
	assert.Equal(t, 500, intErr.HTTPStatus)
}
