package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconcile recomputes the balances of a user from completed transactions and corrects drift
func (uc *LedgerUseCase) Reconcile(ctx context.Context, userID string) (*domain.ReconcileResult, error) {
	var result *domain.ReconcileResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		result, err = uc.reconcileInTx(ctx, repos, userID)
		return err
	})
	if err != nil {
		return nil, asAppError("reconcile balance", err)
	}
	return result, nil
}

// reconcileInTx holds the user row lock while summing, so concurrent applies either finish
// before the sum or apply their increment on top of the corrected balance.
func (uc *LedgerUseCase) reconcileInTx(ctx context.Context, repos domain.Repositories, userID string) (*domain.ReconcileResult, error) {
	log := uc.logger.WithContext(ctx)

	user, err := repos.Users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("lock user", err)
	}
	if user == nil {
		return nil, domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
	}

	totals, err := repos.Transactions.SumCompleted(ctx, userID)
	if err != nil {
		log.Error("Failed to sum completed transactions", zap.String("userID", userID), zap.Error(err))
		return nil, domain.NewPersistenceError("sum transactions", err)
	}

	before := domain.BalanceOf(user)
	after := domain.Balance{
		UserID:        userID,
		WalletBalance: totals.Wallet,
		EDBalance:     totals.ED,
		TotalEarned:   decimal.Max(user.TotalEarned, totals.TotalEarned),
	}

	result := &domain.ReconcileResult{
		UserID:           userID,
		Before:           before,
		After:            after,
		WalletDrift:      after.WalletBalance - before.WalletBalance,
		EDDrift:          after.EDBalance.Sub(before.EDBalance),
		TotalEarnedDrift: after.TotalEarned.Sub(before.TotalEarned),
	}

	if result.WalletDrift == 0 && result.EDDrift.IsZero() && result.TotalEarnedDrift.IsZero() {
		log.Info("Balances match ledger", zap.String("userID", userID))
		return result, nil
	}

	log.Warn("Balance drift detected, correcting",
		zap.String("userID", userID),
		zap.Int64("walletDrift", result.WalletDrift),
		zap.String("edDrift", result.EDDrift.String()),
		zap.String("totalEarnedDrift", result.TotalEarnedDrift.String()))

	if err := repos.Users.SetBalances(ctx, userID, after.WalletBalance, after.EDBalance, after.TotalEarned); err != nil {
		return nil, domain.NewPersistenceError("correct balances", err)
	}

	if result.WalletDrift != 0 {
		if err := uc.recordCorrection(ctx, repos, userID, domain.CurrencyXAF, decimal.NewFromInt(result.WalletDrift), before, after); err != nil {
			return nil, err
		}
		metrics.ReconciliationDrift.WithLabelValues(string(domain.CurrencyXAF)).Inc()
	}
	if !result.EDDrift.IsZero() {
		if err := uc.recordCorrection(ctx, repos, userID, domain.CurrencyED, result.EDDrift, before, after); err != nil {
			return nil, err
		}
		metrics.ReconciliationDrift.WithLabelValues(string(domain.CurrencyED)).Inc()
	}

	result.Corrected = true
	return result, nil
}

// recordCorrection stores a reconciliation row. These rows are excluded from balance sums.
func (uc *LedgerUseCase) recordCorrection(ctx context.Context, repos domain.Repositories, userID string, currency domain.Currency, drift decimal.Decimal, before, after domain.Balance) error {
	now := uc.now()
	row := &domain.Transaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       domain.TransactionTypeReconciliation,
		Amount:     drift,
		Currency:   currency,
		Status:     domain.TransactionStatusCompleted,
		ExternalID: fmt.Sprintf("reconcile:%s:%s:%d", userID, currency, now.UnixNano()),
		Metadata: domain.JSONB{
			"wallet_before": before.WalletBalance,
			"wallet_after":  after.WalletBalance,
			"ed_before":     before.EDBalance.String(),
			"ed_after":      after.EDBalance.String(),
		},
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}
	if _, err := repos.Transactions.Insert(ctx, row); err != nil {
		return domain.NewPersistenceError("record reconciliation", err)
	}
	return nil
}
