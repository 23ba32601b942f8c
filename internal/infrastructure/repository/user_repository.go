package repository

import (
	"context"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRepository implements domain.UserRepository
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIDForUpdate retrieves a user by ID and locks the row
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return findOne[domain.User](r.db.WithContext(ctx).Where("username = ?", username))
}

// GetByReferralCode retrieves a user by the referral code they share
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return findOne[domain.User](r.db.WithContext(ctx).Where("referral_code = ?", code))
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(user).Error
}

// AddWallet increments wallet_balance in place; debits never take it below zero
func (r *UserRepository) AddWallet(ctx context.Context, userID string, delta int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID)
	if delta < 0 {
		query = query.Where("wallet_balance + ? >= 0", delta)
	}

	result := query.Updates(map[string]interface{}{
		"wallet_balance": gorm.Expr("wallet_balance + ?", delta),
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddED increments ed_balance and total_earned in place
func (r *UserRepository) AddED(ctx context.Context, userID string, delta, earned decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"ed_balance":   gorm.Expr("ed_balance + ?", delta),
			"total_earned": gorm.Expr("total_earned + ?", earned),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetBalances overwrites the balance columns of a user
func (r *UserRepository) SetBalances(ctx context.Context, userID string, wallet int64, ed, totalEarned decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"wallet_balance": wallet,
			"ed_balance":     ed,
			"total_earned":   totalEarned,
			"updated_at":     time.Now(),
		}).Error
}
