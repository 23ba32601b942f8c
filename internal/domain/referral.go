package domain

import (
	"context"
	"time"
)

// ReferralStatus tracks whether the bonus for a referral has been paid
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// Referral links a referrer to a referred user. Bonus moves from 0 to a positive value once.
type Referral struct {
	ID          string         `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	ReferrerID  string         `json:"referrer_id" gorm:"not null;type:varchar(64);uniqueIndex:idx_referral_pair"`
	ReferredID  string         `json:"referred_id" gorm:"not null;type:varchar(64);uniqueIndex:idx_referral_pair"`
	Bonus       int64          `json:"bonus" gorm:"type:bigint;not null;default:0"`
	Status      ReferralStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for Referral
func (r Referral) TableName() string {
	return "referrals"
}

// ReferralRepository defines the interface for referral data
type ReferralRepository interface {
	// Ensure creates the pending pair if it does not exist yet.
	Ensure(ctx context.Context, referral *Referral) error
	GetForUpdate(ctx context.Context, referrerID, referredID string) (*Referral, error)
	// Complete moves a pending referral to completed with the paid bonus; false if not pending.
	Complete(ctx context.Context, id string, bonus int64, at time.Time) (bool, error)
	ListByReferrer(ctx context.Context, referrerID string) ([]*Referral, error)
}

// Referral evaluation outcomes
const (
	ReferralReasonAwarded          = "awarded"
	ReferralReasonNoReferrer       = "no_referrer"
	ReferralReasonReferrerNotFound = "referrer_not_found"
	ReferralReasonNotFirstPurchase = "not_first_purchase"
	ReferralReasonAlreadyPaid      = "already_paid"
)

// AwardResult describes the outcome of a referral evaluation
type AwardResult struct {
	Awarded    bool   `json:"awarded"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	ReferrerID string `json:"referrer_id,omitempty"`
}

// ReferralUseCase defines the referral bonus engine
type ReferralUseCase interface {
	AwardIfEligible(ctx context.Context, referredUserID string) (*AwardResult, error)
}
