package earnings

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StartAdSession registers an ad view that a later reward event must reference
func (uc *EarningsUseCase) StartAdSession(ctx context.Context, userID string) (*domain.AdSession, error) {
	now := uc.now()
	session := &domain.AdSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: now,
		ExpiresAt: now.Add(uc.cfg.AdSessionTTL),
	}
	if err := uc.sessions.Create(ctx, session, uc.cfg.AdSessionTTL); err != nil {
		uc.logger.WithContext(ctx).Error("Failed to store ad session", zap.String("userID", userID), zap.Error(err))
		return nil, domain.NewPersistenceError("store ad session", err)
	}

	uc.logger.WithContext(ctx).Info("Ad session started",
		zap.String("userID", userID),
		zap.String("sessionID", session.ID),
		zap.Time("expiresAt", session.ExpiresAt))
	return session, nil
}

// RewardAd consumes an ad session and credits the sized reward in ED
func (uc *EarningsUseCase) RewardAd(ctx context.Context, userID, sessionID string, reportedAmount decimal.Decimal) (*domain.AdRewardResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Rewarding ad view",
		zap.String("userID", userID),
		zap.String("sessionID", sessionID),
		zap.String("reportedAmount", reportedAmount.String()))

	externalID := "ad:" + sessionID

	session, err := uc.sessions.Consume(ctx, userID, sessionID)
	if err != nil {
		log.Error("Failed to consume ad session", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, domain.NewPersistenceError("consume ad session", err)
	}
	if session == nil {
		return uc.replayedReward(ctx, userID, sessionID, externalID)
	}
	if session.UserID != userID {
		// stores must not hand out sessions of other users; put it back if one did
		log.Warn("Ad session belongs to another user", zap.String("sessionID", sessionID))
		uc.restoreSession(ctx, session)
		metrics.AdRewardsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewAppError(domain.ErrCodeAdSessionNotFound, "Ad session not found", http.StatusNotFound, nil)
	}

	now := uc.now()
	if watched := now.Sub(session.StartedAt); watched < uc.cfg.AdMinWatchTime {
		log.Warn("Ad reward reported too early",
			zap.String("sessionID", sessionID),
			zap.Duration("watched", watched))
		metrics.AdRewardsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewAppError(domain.ErrCodeInvalidOperation, "Ad was not watched long enough", http.StatusBadRequest, nil)
	}

	amount := uc.policy(reportedAmount, session)
	if !amount.IsPositive() {
		metrics.AdRewardsTotal.WithLabelValues("zero").Inc()
		return &domain.AdRewardResult{SessionID: sessionID, CreditedAmount: decimal.Zero}, nil
	}

	applied, err := uc.ledger.Apply(ctx, domain.ApplyRequest{
		UserID:     userID,
		Type:       domain.TransactionTypeAdReward,
		Amount:     amount,
		Currency:   domain.CurrencyED,
		ExternalID: externalID,
		Metadata: domain.JSONB{
			"session_id":      sessionID,
			"reported_amount": reportedAmount.String(),
		},
	})
	if err != nil {
		uc.restoreSession(ctx, session)
		metrics.AdRewardsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.AdRewardsTotal.WithLabelValues("credited").Inc()
	balance := applied.Balance
	return &domain.AdRewardResult{
		SessionID:      sessionID,
		CreditedAmount: applied.Transaction.Amount,
		Duplicate:      applied.Duplicate,
		TransactionID:  applied.Transaction.ID,
		Balance:        &balance,
	}, nil
}

// replayedReward answers a reward event for a session that was already consumed
func (uc *EarningsUseCase) replayedReward(ctx context.Context, userID, sessionID, externalID string) (*domain.AdRewardResult, error) {
	stored, err := uc.store.Repos().Transactions.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, domain.NewPersistenceError("get ad reward", err)
	}
	if stored == nil || stored.UserID != userID {
		metrics.AdRewardsTotal.WithLabelValues("unknown_session").Inc()
		return nil, domain.NewAppError(domain.ErrCodeAdSessionNotFound, "Ad session not found or expired", http.StatusNotFound, nil)
	}

	metrics.AdRewardsTotal.WithLabelValues("duplicate").Inc()
	result := &domain.AdRewardResult{
		SessionID:      sessionID,
		CreditedAmount: stored.Amount,
		Duplicate:      true,
		TransactionID:  stored.ID,
	}
	if balance, err := uc.ledger.GetBalance(ctx, userID); err == nil {
		result.Balance = balance
	}
	return result, nil
}

// restoreSession puts a consumed session back for its remaining lifetime so a
// failed credit can be retried by the client
func (uc *EarningsUseCase) restoreSession(ctx context.Context, session *domain.AdSession) {
	remaining := session.ExpiresAt.Sub(uc.now())
	if remaining <= 0 {
		return
	}
	if err := uc.sessions.Create(ctx, session, remaining); err != nil {
		uc.logger.WithContext(ctx).Warn("Failed to restore ad session", zap.String("sessionID", session.ID), zap.Error(err))
	}
}
