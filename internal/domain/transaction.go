package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeMachinePurchase    TransactionType = "machine_purchase"
	TransactionTypeEarningClaim       TransactionType = "earning_claim"
	TransactionTypeAdReward           TransactionType = "ad_reward"
	TransactionTypeReferralBonus      TransactionType = "referral_bonus"
	TransactionTypeBalanceRestoration TransactionType = "balance_restoration"
	TransactionTypeAdminAdjustment    TransactionType = "admin_adjustment"
	TransactionTypeWithdrawal         TransactionType = "withdrawal"
	TransactionTypeWithdrawalRefund   TransactionType = "withdrawal_refund"
	TransactionTypeReconciliation     TransactionType = "reconciliation"
)

// AffectsBalance reports whether completed rows of this type are part of a balance.
// Machine purchases settle on the mobile-money side and reconciliation rows only
// record a correction that was applied directly to the balance columns.
func (t TransactionType) AffectsBalance() bool {
	return t != TransactionTypeMachinePurchase && t != TransactionTypeReconciliation
}

// IsEarning reports whether positive ED amounts of this type count toward total_earned
func (t TransactionType) IsEarning() bool {
	return t == TransactionTypeEarningClaim || t == TransactionTypeAdReward
}

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeMachinePurchase, TransactionTypeEarningClaim, TransactionTypeAdReward,
		TransactionTypeReferralBonus, TransactionTypeBalanceRestoration, TransactionTypeAdminAdjustment,
		TransactionTypeWithdrawal, TransactionTypeWithdrawalRefund, TransactionTypeReconciliation:
		return true
	}
	return false
}

// Currency is either the fiat wallet unit or the internal token
type Currency string

const (
	CurrencyXAF Currency = "XAF"
	CurrencyED  Currency = "ED"
)

// Valid reports whether c is a supported currency
func (c Currency) Valid() bool {
	return c == CurrencyXAF || c == CurrencyED
}

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	// TransactionStatusPending waiting for an external settlement
	TransactionStatusPending TransactionStatus = "pending"

	// TransactionStatusCompleted settled and reflected in balances
	TransactionStatusCompleted TransactionStatus = "completed"

	// TransactionStatusFailed rejected by the provider or expired
	TransactionStatusFailed TransactionStatus = "failed"

	// TransactionStatusRefundPending paid, but nothing could be granted for it
	TransactionStatusRefundPending TransactionStatus = "refund_pending"
)

// Transaction is one ledger row. ExternalID is the idempotency key.
type Transaction struct {
	ID                string            `json:"transaction_id" gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID            string            `json:"user_id" gorm:"index;not null;type:varchar(64)"`
	Type              TransactionType   `json:"type" gorm:"type:varchar(32);not null"`
	Amount            decimal.Decimal   `json:"amount" gorm:"type:numeric(24,8);not null"`
	Currency          Currency          `json:"currency" gorm:"type:varchar(8);not null"`
	Status            TransactionStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	ExternalID        string            `json:"external_id" gorm:"uniqueIndex;type:varchar(191);not null"`
	ProviderReference *string           `json:"provider_reference,omitempty" gorm:"type:varchar(128)"`
	Metadata          JSONB             `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"not null"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
}

// TableName specifies the table name for Transaction
func (t Transaction) TableName() string {
	return "transactions"
}

// LedgerTotals are balances recomputed from completed transactions
type LedgerTotals struct {
	Wallet      int64
	ED          decimal.Decimal
	TotalEarned decimal.Decimal
}

// TransactionRepository defines the interface for transaction data
type TransactionRepository interface {
	// Insert adds the row unless its external id exists; false on duplicate.
	Insert(ctx context.Context, transaction *Transaction) (bool, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*Transaction, error)
	GetByExternalIDForUpdate(ctx context.Context, externalID string) (*Transaction, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)

	// UpdateStatus moves a row from one status to another; false when the row was not in from.
	UpdateStatus(ctx context.Context, id string, from, to TransactionStatus) (bool, error)
	SetProviderReference(ctx context.Context, id, reference string) error

	// FindPendingByPrefix returns the newest pending row of the user whose external id
	// starts with prefix and that was created after since.
	FindPendingByPrefix(ctx context.Context, userID, prefix string, since time.Time) (*Transaction, error)
	// ListPendingBefore returns pending rows of a type created before the cutoff, oldest first.
	ListPendingBefore(ctx context.Context, txType TransactionType, before time.Time, limit int) ([]*Transaction, error)
	// LastCompletedOfTypes returns the newest completed row of any of the given types.
	LastCompletedOfTypes(ctx context.Context, userID string, types []TransactionType) (*Transaction, error)
	SumCompleted(ctx context.Context, userID string) (LedgerTotals, error)
}
