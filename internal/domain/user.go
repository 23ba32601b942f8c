package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserRole is the role carried in the identity token
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents a platform account with its wallet (XAF) and token (ED) balances
type User struct {
	ID            string          `json:"user_id" gorm:"primaryKey;column:id;type:varchar(64)"`
	Username      string          `json:"username" gorm:"uniqueIndex;not null;type:varchar(64)"`
	Password      string          `json:"-" gorm:"not null;type:varchar(128)"`
	Role          UserRole        `json:"role" gorm:"type:varchar(16);not null;default:'user'"`
	Phone         string          `json:"phone,omitempty" gorm:"type:varchar(32)"`
	WalletBalance int64           `json:"wallet_balance" gorm:"type:bigint;not null;default:0"`
	EDBalance     decimal.Decimal `json:"ed_balance" gorm:"type:numeric(24,8);not null;default:0"`
	TotalEarned   decimal.Decimal `json:"total_earned" gorm:"type:numeric(24,8);not null;default:0"`
	ReferralCode  string          `json:"referral_code" gorm:"uniqueIndex;not null;type:varchar(32)"`
	ReferredBy    *string         `json:"referred_by,omitempty" gorm:"type:varchar(32)"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for User
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Balance is a snapshot of the three balance columns of a user
type Balance struct {
	UserID        string          `json:"user_id"`
	WalletBalance int64           `json:"wallet_balance"`
	EDBalance     decimal.Decimal `json:"ed_balance"`
	TotalEarned   decimal.Decimal `json:"total_earned"`
}

// BalanceOf extracts the balance snapshot of a user
func BalanceOf(u *User) Balance {
	return Balance{
		UserID:        u.ID,
		WalletBalance: u.WalletBalance,
		EDBalance:     u.EDBalance,
		TotalEarned:   u.TotalEarned,
	}
}

// UserRepository defines the interface for user data.
// Balance mutators are atomic in-store increments and are only called by the ledger.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	Create(ctx context.Context, user *User) error

	// AddWallet adds delta to wallet_balance. Negative deltas only apply when the
	// result stays non-negative; the returned bool is false when nothing was updated.
	AddWallet(ctx context.Context, userID string, delta int64) (bool, error)
	// AddED adds delta to ed_balance and earned to total_earned.
	AddED(ctx context.Context, userID string, delta, earned decimal.Decimal) (bool, error)
	// SetBalances overwrites all balance columns; used by reconciliation only.
	SetBalances(ctx context.Context, userID string, wallet int64, ed, totalEarned decimal.Decimal) error
}

// UserUseCase defines the interface for user business logic
type UserUseCase interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	GetUserInfo(ctx context.Context, userID string) (*User, error)
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}
