package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AppError represents an application error
type AppError struct {
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Path       string    `json:"path,omitempty"`
	Method     string    `json:"method,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(code, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
		Err:        err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *AppError {
	return NewAppError(
		"VALIDATION_ERROR",
		fmt.Sprintf("Validation failed for field '%s': %s", field, message),
		http.StatusBadRequest,
		nil,
	)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(
		"NOT_FOUND",
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		nil,
	)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Unauthorized access"
	}
	return NewAppError(
		"UNAUTHORIZED",
		message,
		http.StatusUnauthorized,
		nil,
	)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access forbidden"
	}
	return NewAppError(
		"FORBIDDEN",
		message,
		http.StatusForbidden,
		nil,
	)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(
		"CONFLICT",
		message,
		http.StatusConflict,
		nil,
	)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, err error) *AppError {
	if message == "" {
		message = "Internal server error"
	}
	return NewAppError(
		"INTERNAL_ERROR",
		message,
		http.StatusInternalServerError,
		err,
	)
}

// NewPersistenceError creates a retryable persistence error
func NewPersistenceError(operation string, err error) *AppError {
	return NewAppError(
		ErrCodePersistence,
		fmt.Sprintf("Persistence operation failed: %s", operation),
		http.StatusServiceUnavailable,
		err,
	)
}

// NewProviderUnavailableError hides provider diagnostics behind a generic message
func NewProviderUnavailableError(err error) *AppError {
	return NewAppError(
		ErrCodeProviderUnavailable,
		"Payment provider is temporarily unavailable",
		http.StatusServiceUnavailable,
		err,
	)
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{
		Error:   err,
		Success: false,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

// Error codes for different categories of errors
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenMissing       = "TOKEN_MISSING"
	ErrCodeForbidden          = "FORBIDDEN"

	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidCurrency     = "INVALID_CURRENCY"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvalidOperation    = "INVALID_OPERATION"

	ErrCodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
	ErrCodeTransactionInvalidStatus = "TRANSACTION_INVALID_STATUS"
	ErrCodeUnknownTransaction       = "UNKNOWN_TRANSACTION"

	ErrCodeInvalidPhone            = "INVALID_PHONE"
	ErrCodePriceMismatch           = "PRICE_MISMATCH"
	ErrCodeAlreadyOwned            = "ALREADY_OWNED"
	ErrCodeDuplicatePendingPayment = "DUPLICATE_PENDING_PAYMENT"
	ErrCodeInsufficientFunds       = "INSUFFICIENT_FUNDS"
	ErrCodePaymentRefused          = "PAYMENT_REFUSED"
	ErrCodeProviderUnavailable     = "PROVIDER_UNAVAILABLE"

	ErrCodeMachineTypeNotFound = "MACHINE_TYPE_NOT_FOUND"
	ErrCodeMachineNotFound     = "MACHINE_NOT_FOUND"
	ErrCodeNotOwner            = "NOT_OWNER"
	ErrCodeNotClaimable        = "NOT_CLAIMABLE"
	ErrCodeNotActivatable      = "NOT_ACTIVATABLE"

	ErrCodeAdSessionNotFound = "AD_SESSION_NOT_FOUND"

	ErrCodeWithdrawalNotFound      = "WITHDRAWAL_NOT_FOUND"
	ErrCodeWithdrawalInvalidStatus = "WITHDRAWAL_INVALID_STATUS"

	ErrCodeRequiredField = "REQUIRED_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeInvalidRange  = "INVALID_RANGE"

	ErrCodePersistence = "PERSISTENCE_ERROR"
)
