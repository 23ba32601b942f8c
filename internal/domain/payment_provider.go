package domain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrProviderTimeout is returned when the provider did not answer in time.
// The outcome of the call is unknown.
var ErrProviderTimeout = errors.New("payment provider timeout")

// PaymentProvider defines the interface for the external mobile-money gateway
type PaymentProvider interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error)
	PaymentStatus(ctx context.Context, transID string) (*ProviderPayment, error)
	// FindPaymentByExternalID returns nil when the provider has no payment for externalID.
	FindPaymentByExternalID(ctx context.Context, externalID string) (*ProviderPayment, error)
}

// PaymentRequest represents a direct-pay request sent to the provider
type PaymentRequest struct {
	Amount     int64  `json:"amount"`
	Phone      string `json:"phone"`
	Medium     string `json:"medium,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	UserID     string `json:"userId"`
	ExternalID string `json:"externalId"`
	Message    string `json:"message"`
}

// PaymentInitiation represents the provider response to a direct-pay request
type PaymentInitiation struct {
	TransID string `json:"transId"`
	Message string `json:"message"`
}

// ProviderStatus is the payment status as reported by the provider
type ProviderStatus string

const (
	ProviderStatusCreated    ProviderStatus = "CREATED"
	ProviderStatusPending    ProviderStatus = "PENDING"
	ProviderStatusSuccessful ProviderStatus = "SUCCESSFUL"
	ProviderStatusFailed     ProviderStatus = "FAILED"
	ProviderStatusExpired    ProviderStatus = "EXPIRED"
)

// PaymentOutcome is the settlement outcome a confirmation acts on
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
	PaymentOutcomePending PaymentOutcome = "pending"
)

// Outcome maps a provider status onto a settlement outcome
func (s ProviderStatus) Outcome() PaymentOutcome {
	switch s {
	case ProviderStatusSuccessful:
		return PaymentOutcomeSuccess
	case ProviderStatusFailed, ProviderStatusExpired:
		return PaymentOutcomeFailed
	default:
		return PaymentOutcomePending
	}
}

// ProviderPayment represents a payment as reported by the provider status endpoints
type ProviderPayment struct {
	TransID    string         `json:"transId"`
	Status     ProviderStatus `json:"status"`
	ExternalID string         `json:"externalId"`
	Amount     int64          `json:"amount"`
	Medium     string         `json:"medium,omitempty"`
}

// ProviderErrorResponse represents error bodies returned by the provider
type ProviderErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProviderError represents a provider error with status code
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

var insufficientFundsPattern = regexp.MustCompile(`(?i)insufficient|not enough (funds|balance)|solde insuffisant`)

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// Is4xxError checks if the error is a 4xx client error
func (e *ProviderError) Is4xxError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsInsufficientFunds reports whether the provider refused the payer for lack of funds
func (e *ProviderError) IsInsufficientFunds() bool {
	return insufficientFundsPattern.MatchString(e.Message) || insufficientFundsPattern.MatchString(e.Code)
}
