package repository

import (
	"context"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"gorm.io/gorm"
)

// WithdrawalRepository implements domain.WithdrawalRepository
type WithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) domain.WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create creates a new withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	withdrawal.CreatedAt = time.Now()
	withdrawal.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

// GetByID retrieves a withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return findOne[domain.Withdrawal](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIDForUpdate retrieves a withdrawal by ID and locks the row
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return findOne[domain.Withdrawal](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id))
}

// GetByUserID lists the withdrawals of a user, newest first
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	var withdrawals []*domain.Withdrawal
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// ListByStatus lists withdrawals in a status, oldest first
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error) {
	var withdrawals []*domain.Withdrawal
	err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// Review moves a pending withdrawal to its reviewed status
func (r *WithdrawalRepository) Review(ctx context.Context, id string, to domain.WithdrawalStatus, reviewerID, reason string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":      to,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"reason":      reason,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
