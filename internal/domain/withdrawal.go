package domain

import (
	"context"
	"time"
)

// WithdrawalStatus represents the review state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a cash-out request. The wallet is debited when the request is created
// and refunded if an admin rejects it.
type Withdrawal struct {
	ID         string           `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID     string           `json:"user_id" gorm:"index;not null;type:varchar(64)"`
	Amount     int64            `json:"amount" gorm:"type:bigint;not null"`
	Phone      string           `json:"phone" gorm:"type:varchar(32);not null"`
	Status     WithdrawalStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	ExternalID string           `json:"external_id" gorm:"uniqueIndex;type:varchar(191);not null"`
	ReviewedBy *string          `json:"reviewed_by,omitempty" gorm:"type:varchar(64)"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`
	Reason     string           `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt  time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time        `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for Withdrawal
func (w Withdrawal) TableName() string {
	return "withdrawals"
}

// WithdrawalRepository defines the interface for withdrawal data
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *Withdrawal) error
	GetByID(ctx context.Context, id string) (*Withdrawal, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Withdrawal, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Withdrawal, error)
	ListByStatus(ctx context.Context, status WithdrawalStatus, limit, offset int) ([]*Withdrawal, error)
	// Review moves a pending withdrawal to approved or rejected; false if not pending.
	Review(ctx context.Context, id string, to WithdrawalStatus, reviewerID, reason string, at time.Time) (bool, error)
}

// WithdrawalUseCase defines withdrawal request and review operations
type WithdrawalUseCase interface {
	RequestWithdrawal(ctx context.Context, userID string, amount int64, phone string) (*Withdrawal, error)
	ListUserWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*Withdrawal, error)
	ListPending(ctx context.Context, actorID string, limit, offset int) ([]*Withdrawal, error)
	Approve(ctx context.Context, actorID, withdrawalID string) (*Withdrawal, error)
	Reject(ctx context.Context, actorID, withdrawalID, reason string) (*Withdrawal, error)
}
