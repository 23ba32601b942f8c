package domain

import (
	"context"
	"time"
)

// Notification types
const (
	NotificationTypeReferralBonus  = "referral_bonus"
	NotificationTypePurchase       = "machine_purchase"
	NotificationTypeWithdrawal     = "withdrawal"
	NotificationTypeBalanceUpdated = "balance_updated"
)

// Notification is a user-facing message. DedupKey makes retried writers idempotent.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID    string    `json:"user_id" gorm:"index;not null;type:varchar(64)"`
	Type      string    `json:"type" gorm:"type:varchar(32);not null"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	DedupKey  string    `json:"-" gorm:"uniqueIndex;type:varchar(191);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName specifies the table name for Notification
func (n Notification) TableName() string {
	return "notifications"
}

// NotificationRepository defines the interface for notification data
type NotificationRepository interface {
	// Create inserts unless the dedup key exists; false on duplicate.
	Create(ctx context.Context, notification *Notification) (bool, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
}
