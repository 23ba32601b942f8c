package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository implements domain.NotificationRepository
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) domain.NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification unless its dedup key was already used
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) (bool, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedup_key"}}, DoNothing: true}).
		Create(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetByUserID lists notifications of a user, newest first
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a notification of the user as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
