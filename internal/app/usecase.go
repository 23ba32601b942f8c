package app

import (
	"fmt"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/saradorri/edrewards/internal/infrastructure/lock"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/usecase/earnings"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/saradorri/edrewards/internal/usecase/payment"
	"github.com/saradorri/edrewards/internal/usecase/referral"
	"github.com/saradorri/edrewards/internal/usecase/user"
	"github.com/saradorri/edrewards/internal/usecase/withdrawal"
	"github.com/shopspring/decimal"
)

func (a *application) InitLedgerUseCase(store domain.Store, log *logger.Logger) (*ledger.LedgerUseCase, domain.LedgerUseCase) {
	uc := ledger.NewLedgerUseCase(store, log)
	return uc, uc
}

func (a *application) InitPaymentUseCase(
	store domain.Store,
	provider domain.PaymentProvider,
	outbox domain.OutboxProcessor,
	locks *lock.KeyLockManager,
	log *logger.Logger,
) (*payment.PaymentUseCase, domain.PaymentUseCase) {
	discounts := make([]payment.DiscountTier, 0, len(a.config.Payments.Discounts))
	for _, tier := range a.config.Payments.Discounts {
		discounts = append(discounts, payment.DiscountTier{MinPrice: tier.MinPrice, Percent: tier.Percent})
	}

	uc := payment.NewPaymentUseCase(store, provider, outbox, locks, payment.Config{
		Region:          a.config.Payments.Region,
		PriceTolerance:  a.config.Payments.PriceTolerance,
		DedupWindow:     a.config.Payments.DedupWindow,
		IntentExpiry:    a.config.Payments.IntentExpiry,
		ProviderTimeout: a.config.Provider.Timeout + a.config.Provider.RetryWaitMax,
		DefaultMedium:   a.config.Provider.DefaultMedium,
		PaymentMessage:  a.config.Provider.PaymentMessage,
		Discounts:       discounts,
	}, log)
	return uc, uc
}

func (a *application) InitPaymentPoller(payments *payment.PaymentUseCase, log *logger.Logger) *payment.Poller {
	return payment.NewPoller(payments, payment.PollerConfig{
		Interval:  a.config.Payments.PollInterval,
		MinAge:    a.config.Payments.PollMinAge,
		BatchSize: a.config.Payments.PollBatchSize,
	}, log)
}

func (a *application) InitReferralUseCase(store domain.Store, ledgerUC *ledger.LedgerUseCase, log *logger.Logger) *referral.ReferralUseCase {
	return referral.NewReferralUseCase(store, ledgerUC, a.config.Referral.Bonus, log)
}

func (a *application) InitEarningsUseCase(
	store domain.Store,
	ledgerUC *ledger.LedgerUseCase,
	sessions domain.AdSessionStore,
	log *logger.Logger,
) (domain.EarningsUseCase, error) {
	maxReward, err := decimal.NewFromString(a.config.Earnings.AdMaxReward)
	if err != nil {
		return nil, fmt.Errorf("invalid earnings.ad_max_reward %q: %w", a.config.Earnings.AdMaxReward, err)
	}
	return earnings.NewEarningsUseCase(store, ledgerUC, sessions, earnings.Config{
		ClaimPeriod:    a.config.Earnings.ClaimPeriod,
		AdSessionTTL:   a.config.Earnings.AdSessionTTL,
		AdMaxReward:    maxReward,
		AdMinWatchTime: a.config.Earnings.AdMinWatchTime,
	}, log), nil
}

func (a *application) InitWithdrawalUseCase(store domain.Store, ledgerUC *ledger.LedgerUseCase, log *logger.Logger) domain.WithdrawalUseCase {
	return withdrawal.NewWithdrawalUseCase(store, ledgerUC, a.config.Payments.Region, log)
}

func (a *application) InitUserUseCase(
	userRepo domain.UserRepository,
	notificationRepo domain.NotificationRepository,
	jwt auth.JWTService,
	log *logger.Logger,
) domain.UserUseCase {
	return user.NewUserUseCase(userRepo, notificationRepo, jwt, log)
}
