package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository implements domain.ReferralRepository
type ReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *gorm.DB) domain.ReferralRepository {
	return &ReferralRepository{db: db}
}

// Ensure inserts the pending referral pair if it is missing
func (r *ReferralRepository) Ensure(ctx context.Context, referral *domain.Referral) error {
	now := time.Now()
	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	if referral.Status == "" {
		referral.Status = domain.ReferralStatusPending
	}
	referral.CreatedAt = now
	referral.UpdatedAt = now

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "referrer_id"}, {Name: "referred_id"}},
			DoNothing: true,
		}).
		Create(referral).Error
}

// GetForUpdate retrieves and locks the referral row of a pair
func (r *ReferralRepository) GetForUpdate(ctx context.Context, referrerID, referredID string) (*domain.Referral, error) {
	return findOne[domain.Referral](forUpdate(r.db.WithContext(ctx)).
		Where("referrer_id = ? AND referred_id = ?", referrerID, referredID))
}

// Complete marks a pending referral as paid
func (r *ReferralRepository) Complete(ctx context.Context, id string, bonus int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Referral{}).
		Where("id = ? AND status = ? AND bonus = 0", id, domain.ReferralStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.ReferralStatusCompleted,
			"bonus":        bonus,
			"completed_at": at,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByReferrer lists the referrals of a referrer
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	var referrals []*domain.Referral
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}
