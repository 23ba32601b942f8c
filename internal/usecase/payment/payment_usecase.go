package payment

import (
	"context"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/lock"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Config holds the purchase rules
type Config struct {
	Region          string
	PriceTolerance  int64
	DedupWindow     time.Duration
	IntentExpiry    time.Duration
	ProviderTimeout time.Duration
	DefaultMedium   string
	PaymentMessage  string
	Discounts       []DiscountTier
}

// PaymentUseCase creates machine purchase intents and applies their settlement
type PaymentUseCase struct {
	store    domain.Store
	provider domain.PaymentProvider
	outbox   domain.OutboxProcessor
	locks    *lock.KeyLockManager
	pricer   *Pricer
	cfg      Config
	now      func() time.Time
	logger   *logger.Logger
}

// NewPaymentUseCase creates a new payment usecase
func NewPaymentUseCase(
	store domain.Store,
	provider domain.PaymentProvider,
	outbox domain.OutboxProcessor,
	locks *lock.KeyLockManager,
	cfg Config,
	logger *logger.Logger,
) *PaymentUseCase {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 20 * time.Second
	}
	logger.Info("PaymentUseCase initialized successfully",
		zap.String("region", cfg.Region),
		zap.Int64("priceTolerance", cfg.PriceTolerance),
		zap.Duration("dedupWindow", cfg.DedupWindow))
	return &PaymentUseCase{
		store:    store,
		provider: provider,
		outbox:   outbox,
		locks:    locks,
		pricer:   NewPricer(cfg.Discounts),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("payment"),
	}
}

// WithClock replaces the time source
func (uc *PaymentUseCase) WithClock(now func() time.Time) *PaymentUseCase {
	uc.now = now
	return uc
}

// checkProvider fetches the provider view of a purchase, by provider reference when known
func (uc *PaymentUseCase) checkProvider(ctx context.Context, t *domain.Transaction) (*domain.ProviderPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.ProviderTimeout)
	defer cancel()

	if t.ProviderReference != nil && *t.ProviderReference != "" {
		return uc.provider.PaymentStatus(ctx, *t.ProviderReference)
	}
	return uc.provider.FindPaymentByExternalID(ctx, t.ExternalID)
}

func machineTypeOf(t *domain.Transaction) string {
	if t.Metadata == nil {
		return ""
	}
	id, _ := t.Metadata["machine_type_id"].(string)
	return id
}

func resultOf(t *domain.Transaction, alreadyProcessed bool) *domain.ConfirmResult {
	return &domain.ConfirmResult{
		ExternalID:       t.ExternalID,
		Granted:          t.Status == domain.TransactionStatusCompleted,
		AlreadyProcessed: alreadyProcessed,
		Status:           t.Status,
	}
}

func asAppError(operation string, err error) error {
	if _, ok := domain.IsAppError(err); ok {
		return err
	}
	return domain.NewPersistenceError(operation, err)
}
