package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ApplyRequest is a single balance mutation. ExternalID makes it idempotent.
type ApplyRequest struct {
	UserID     string
	Type       TransactionType
	Amount     decimal.Decimal
	Currency   Currency
	ExternalID string
	Metadata   JSONB
}

// ApplyResult is the stored transaction and the balance after it.
// Duplicate is set when ExternalID had already been applied; no delta was made.
type ApplyResult struct {
	Transaction *Transaction `json:"transaction"`
	Balance     Balance      `json:"balance"`
	Duplicate   bool         `json:"duplicate"`
}

// ReconcileResult describes a balance recomputation from completed transactions
type ReconcileResult struct {
	UserID           string          `json:"user_id"`
	Before           Balance         `json:"before"`
	After            Balance         `json:"after"`
	WalletDrift      int64           `json:"wallet_drift"`
	EDDrift          decimal.Decimal `json:"ed_drift"`
	TotalEarnedDrift decimal.Decimal `json:"total_earned_drift"`
	Corrected        bool            `json:"corrected"`
}

// AdjustOperation is the arithmetic of an admin balance adjustment
type AdjustOperation string

const (
	AdjustOperationSet      AdjustOperation = "set"
	AdjustOperationAdd      AdjustOperation = "add"
	AdjustOperationSubtract AdjustOperation = "subtract"
)

// AdjustRequest is an admin balance adjustment
type AdjustRequest struct {
	UserID         string
	Operation      AdjustOperation
	Amount         decimal.Decimal
	Currency       Currency
	IdempotencyKey string
	Reason         string
}

// RestoreRequest is an admin balance restoration. Without an amount the last completed
// earning or bonus transaction of the user is replayed.
type RestoreRequest struct {
	UserID         string
	Amount         *decimal.Decimal
	Currency       Currency
	IdempotencyKey string
	Reason         string
}

// LedgerUseCase is the only writer of balance columns
type LedgerUseCase interface {
	Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error)
	// ApplyInTx applies req inside the caller's unit of work.
	ApplyInTx(ctx context.Context, repos Repositories, req ApplyRequest) (*ApplyResult, error)
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	GetTransactions(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)
	Reconcile(ctx context.Context, userID string) (*ReconcileResult, error)

	RestoreBalance(ctx context.Context, actorID string, req RestoreRequest) (*ApplyResult, error)
	AdjustBalance(ctx context.Context, actorID string, req AdjustRequest) (*ApplyResult, error)
	ReconcileUser(ctx context.Context, actorID, userID string) (*ReconcileResult, error)
}
