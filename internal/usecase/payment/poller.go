package payment

import (
	"context"
	"sync"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PollerConfig controls the pending purchase poller
type PollerConfig struct {
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
}

// Poller resolves purchase intents whose webhook never arrived
type Poller struct {
	payments *PaymentUseCase
	cfg      PollerConfig
	logger   *logger.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPoller creates a new pending purchase poller
func NewPoller(payments *PaymentUseCase, cfg PollerConfig, logger *logger.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		payments: payments,
		cfg:      cfg,
		logger:   logger.Named("payment-poller"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// PollOnce checks one batch of stale pending intents and returns how many were resolved
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	uc := p.payments
	now := uc.now()

	pending, err := uc.store.Repos().Transactions.ListPendingBefore(ctx, domain.TransactionTypeMachinePurchase, now.Add(-p.cfg.MinAge), p.cfg.BatchSize)
	if err != nil {
		p.logger.Error("Failed to list pending purchases", zap.Error(err))
		return 0, err
	}

	resolved := 0
	for _, t := range pending {
		select {
		case <-ctx.Done():
			return resolved, ctx.Err()
		default:
		}

		outcome, transID, ok := p.resolve(ctx, t, now)
		if !ok {
			continue
		}
		if _, err := uc.confirm(ctx, t.ExternalID, transID, outcome, SourcePoller); err != nil {
			p.logger.Error("Failed to apply polled settlement",
				zap.String("externalID", t.ExternalID),
				zap.String("outcome", string(outcome)),
				zap.Error(err))
			continue
		}
		resolved++
	}

	if len(pending) > 0 {
		p.logger.Info("Pending purchases polled", zap.Int("checked", len(pending)), zap.Int("resolved", resolved))
	}
	return resolved, nil
}

// resolve decides the outcome of one intent. Intents past the expiry are failed unless the
// provider reports them successful; an unreachable provider never expires an intent.
func (p *Poller) resolve(ctx context.Context, t *domain.Transaction, now time.Time) (domain.PaymentOutcome, string, bool) {
	payment, err := p.payments.checkProvider(ctx, t)
	if err != nil {
		p.logger.Warn("Provider status check failed",
			zap.String("externalID", t.ExternalID),
			zap.Error(err))
		return "", "", false
	}

	outcome, transID := domain.PaymentOutcomePending, ""
	if payment != nil {
		outcome, transID = payment.Status.Outcome(), payment.TransID
	}
	if outcome != domain.PaymentOutcomePending {
		return outcome, transID, true
	}

	expiry := p.payments.cfg.IntentExpiry
	if expiry > 0 && now.Sub(t.CreatedAt) > expiry {
		p.logger.Info("Expiring stale purchase intent",
			zap.String("externalID", t.ExternalID),
			zap.Time("createdAt", t.CreatedAt))
		return domain.PaymentOutcomeFailed, transID, true
	}
	return "", "", false
}

// Start runs the poller loop in the background
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		p.logger.Warn("Payment poller is already running")
		return
	}
	p.isRunning = true
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()

		p.logger.Info("Payment poller started", zap.Duration("interval", p.cfg.Interval))
		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.PollOnce(p.ctx); err != nil {
					p.logger.Error("Payment polling failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the current batch
func (p *Poller) Stop() {
	p.mu.Lock()
	p.isRunning = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Info("Payment poller stopped")
}
