package ledger

import (
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// validateApplyRequest validates a ledger request before anything is written
func validateApplyRequest(req domain.ApplyRequest) error {
	if req.UserID == "" {
		return domain.NewAppError(domain.ErrCodeRequiredField, "user id is required", 400, nil)
	}
	if req.ExternalID == "" {
		return domain.NewAppError(domain.ErrCodeRequiredField, "external id is required", 400, nil)
	}
	if !req.Type.Valid() {
		return domain.NewAppError(domain.ErrCodeInvalidFormat, "unknown transaction type", 400, nil)
	}
	if !req.Currency.Valid() {
		return domain.NewAppError(domain.ErrCodeInvalidCurrency, "unsupported currency", 400, nil)
	}
	if req.Amount.IsZero() {
		return domain.NewAppError(domain.ErrCodeInvalidAmount, "amount must not be zero", 400, nil)
	}
	if req.Currency == domain.CurrencyXAF && !isWhole(req.Amount) {
		return domain.NewAppError(domain.ErrCodeInvalidAmount, "XAF amounts must be whole numbers", 400, nil)
	}
	return nil
}

func isWhole(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(0))
}

// asAppError keeps AppErrors and maps anything else to a retryable persistence error
func asAppError(operation string, err error) error {
	if _, ok := domain.IsAppError(err); ok {
		return err
	}
	return domain.NewPersistenceError(operation, err)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
