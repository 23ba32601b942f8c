package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository implements domain.AuditRepository
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new admin audit repository
func NewAuditRepository(db *gorm.DB) domain.AuditRepository {
	return &AuditRepository{db: db}
}

// Create records an admin action
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AdminAuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByTargetUserID lists admin actions applied to a user
func (r *AuditRepository) GetByTargetUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.AdminAuditLog, error) {
	var entries []*domain.AdminAuditLog
	err := r.db.WithContext(ctx).Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
