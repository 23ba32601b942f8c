package referral

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBonus is the referrer credit in XAF
const DefaultBonus int64 = 1000

// ReferralUseCase pays the referrer once, on the first machine purchase of the referred user
type ReferralUseCase struct {
	store  domain.Store
	ledger *ledger.LedgerUseCase
	bonus  int64
	now    func() time.Time
	logger *logger.Logger
}

// NewReferralUseCase creates a new referral usecase
func NewReferralUseCase(store domain.Store, ledger *ledger.LedgerUseCase, bonus int64, logger *logger.Logger) *ReferralUseCase {
	if bonus <= 0 {
		bonus = DefaultBonus
	}
	logger.Info("ReferralUseCase initialized successfully", zap.Int64("bonus", bonus))
	return &ReferralUseCase{
		store:  store,
		ledger: ledger,
		bonus:  bonus,
		now:    time.Now,
		logger: logger.Named("referral"),
	}
}

// AwardIfEligible evaluates the referral of a user. Ineligibility is reported through
// the result reason, never as an error.
func (uc *ReferralUseCase) AwardIfEligible(ctx context.Context, referredUserID string) (*domain.AwardResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Evaluating referral", zap.String("referredUserID", referredUserID))

	var (
		result *domain.AwardResult
		notice *domain.Notification
	)
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		result, notice, err = uc.evaluate(ctx, repos, referredUserID)
		return err
	})
	if err != nil {
		log.Error("Referral evaluation failed", zap.String("referredUserID", referredUserID), zap.Error(err))
		if _, ok := domain.IsAppError(err); ok {
			return nil, err
		}
		return nil, domain.NewPersistenceError("evaluate referral", err)
	}

	ledger.Notify(ctx, uc.store, uc.logger, notice)
	metrics.ReferralEvaluationsTotal.WithLabelValues(result.Reason).Inc()
	log.Info("Referral evaluated",
		zap.String("referredUserID", referredUserID),
		zap.String("referrerID", result.ReferrerID),
		zap.Bool("awarded", result.Awarded),
		zap.String("reason", result.Reason))
	return result, nil
}

func (uc *ReferralUseCase) evaluate(ctx context.Context, repos domain.Repositories, referredUserID string) (*domain.AwardResult, *domain.Notification, error) {
	referred, err := repos.Users.GetByID(ctx, referredUserID)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("get referred user", err)
	}
	if referred == nil {
		return nil, nil, domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", http.StatusNotFound, nil)
	}
	if referred.ReferredBy == nil || *referred.ReferredBy == "" {
		return &domain.AwardResult{Reason: domain.ReferralReasonNoReferrer}, nil, nil
	}

	referrer, err := repos.Users.GetByReferralCode(ctx, *referred.ReferredBy)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("get referrer", err)
	}
	if referrer == nil || referrer.ID == referred.ID {
		return &domain.AwardResult{Reason: domain.ReferralReasonReferrerNotFound}, nil, nil
	}

	now := uc.now()
	if err := repos.Referrals.Ensure(ctx, &domain.Referral{
		ID:         uuid.NewString(),
		ReferrerID: referrer.ID,
		ReferredID: referred.ID,
		Status:     domain.ReferralStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return nil, nil, domain.NewPersistenceError("ensure referral", err)
	}

	ref, err := repos.Referrals.GetForUpdate(ctx, referrer.ID, referred.ID)
	if err != nil || ref == nil {
		return nil, nil, domain.NewPersistenceError("lock referral", err)
	}
	if ref.Status == domain.ReferralStatusCompleted || ref.Bonus > 0 {
		return &domain.AwardResult{Reason: domain.ReferralReasonAlreadyPaid, ReferrerID: referrer.ID}, nil, nil
	}

	owned, err := repos.Machines.CountUserMachines(ctx, referred.ID)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("count machines", err)
	}
	if owned != 1 {
		return &domain.AwardResult{Reason: domain.ReferralReasonNotFirstPurchase, ReferrerID: referrer.ID}, nil, nil
	}

	if _, err := uc.ledger.ApplyInTx(ctx, repos, domain.ApplyRequest{
		UserID:     referrer.ID,
		Type:       domain.TransactionTypeReferralBonus,
		Amount:     decimal.NewFromInt(uc.bonus),
		Currency:   domain.CurrencyXAF,
		ExternalID: fmt.Sprintf("referral:%s:%s", referrer.ID, referred.ID),
		Metadata:   domain.JSONB{"referred_id": referred.ID},
	}); err != nil {
		return nil, nil, err
	}

	completed, err := repos.Referrals.Complete(ctx, ref.ID, uc.bonus, now)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("complete referral", err)
	}
	if !completed {
		// the row lock makes this unreachable unless the row changed under another writer
		return nil, nil, domain.NewConflictError("Referral was completed concurrently")
	}

	result := &domain.AwardResult{
		Awarded:    true,
		Amount:     uc.bonus,
		Reason:     domain.ReferralReasonAwarded,
		ReferrerID: referrer.ID,
	}
	notice := &domain.Notification{
		UserID:    referrer.ID,
		Type:      domain.NotificationTypeReferralBonus,
		Title:     "Referral bonus",
		Message:   fmt.Sprintf("%s bought their first machine. You earned %d XAF.", referred.Username, uc.bonus),
		DedupKey:  fmt.Sprintf("referral:%s:%s", referrer.ID, referred.ID),
		CreatedAt: now,
	}
	return result, notice, nil
}

// Handler adapts AwardIfEligible to REFERRAL_EVALUATION outbox events
func (uc *ReferralUseCase) Handler() func(ctx context.Context, event *domain.OutboxEvent) error {
	return func(ctx context.Context, event *domain.OutboxEvent) error {
		userID, _ := event.Data["user_id"].(string)
		if userID == "" {
			return fmt.Errorf("referral event %s has no user_id", event.ID)
		}
		_, err := uc.AwardIfEligible(ctx, userID)
		return err
	}
}
