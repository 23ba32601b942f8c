package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Notify stores a user notification after the operation it reports has committed.
// A failed write is logged and dropped; it never undoes or fails the caller.
func Notify(ctx context.Context, store domain.Store, log *logger.Logger, notification *domain.Notification) {
	if notification == nil {
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if _, err := store.Repos().Notifications.Create(ctx, notification); err != nil {
		log.WithContext(ctx).Error("Failed to store notification",
			zap.String("userID", notification.UserID),
			zap.String("type", notification.Type),
			zap.String("dedupKey", notification.DedupKey),
			zap.Error(err))
	}
}
