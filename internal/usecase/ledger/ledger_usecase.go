package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerUseCase is the single writer of user balances
type LedgerUseCase struct {
	store  domain.Store
	now    func() time.Time
	logger *logger.Logger
}

// NewLedgerUseCase creates a new ledger usecase
func NewLedgerUseCase(store domain.Store, logger *logger.Logger) *LedgerUseCase {
	logger.Info("LedgerUseCase initialized successfully")
	return &LedgerUseCase{
		store:  store,
		now:    time.Now,
		logger: logger.Named("ledger"),
	}
}

// WithClock replaces the time source
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// Apply applies one balance mutation in its own database transaction
func (uc *LedgerUseCase) Apply(ctx context.Context, req domain.ApplyRequest) (*domain.ApplyResult, error) {
	var result *domain.ApplyResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		result, err = uc.ApplyInTx(ctx, repos, req)
		return err
	})
	if err != nil {
		return nil, asAppError("apply transaction", err)
	}
	return result, nil
}

// ApplyInTx records the transaction and moves the balance inside the caller's unit of work.
// An external id that was already applied returns the stored row with Duplicate set.
func (uc *LedgerUseCase) ApplyInTx(ctx context.Context, repos domain.Repositories, req domain.ApplyRequest) (*domain.ApplyResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Applying ledger transaction",
		zap.String("userID", req.UserID),
		zap.String("type", string(req.Type)),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", string(req.Currency)),
		zap.String("externalID", req.ExternalID))

	if err := validateApplyRequest(req); err != nil {
		log.Warn("Invalid ledger request", zap.String("externalID", req.ExternalID), zap.Error(err))
		metrics.LedgerApplyTotal.WithLabelValues(string(req.Type), string(req.Currency), "invalid").Inc()
		return nil, err
	}

	user, err := repos.Users.GetByID(ctx, req.UserID)
	if err != nil {
		log.Error("Failed to get user from database", zap.String("userID", req.UserID), zap.Error(err))
		return nil, domain.NewPersistenceError("get user", err)
	}
	if user == nil {
		log.Warn("User not found", zap.String("userID", req.UserID))
		return nil, domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
	}

	now := uc.now()
	transaction := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      domain.TransactionStatusCompleted,
		ExternalID:  req.ExternalID,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}

	inserted, err := repos.Transactions.Insert(ctx, transaction)
	if err != nil {
		log.Error("Failed to insert transaction", zap.String("externalID", req.ExternalID), zap.Error(err))
		return nil, domain.NewPersistenceError("insert transaction", err)
	}

	if !inserted {
		return uc.duplicateResult(ctx, repos, req, user)
	}

	if req.Type.AffectsBalance() {
		if err := uc.moveBalance(ctx, repos, req); err != nil {
			metrics.LedgerApplyTotal.WithLabelValues(string(req.Type), string(req.Currency), "rejected").Inc()
			return nil, err
		}
	}

	updated, err := repos.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, domain.NewPersistenceError("reload user", err)
	}

	metrics.LedgerApplyTotal.WithLabelValues(string(req.Type), string(req.Currency), "applied").Inc()
	log.Info("Ledger transaction applied",
		zap.String("transactionID", transaction.ID),
		zap.String("externalID", req.ExternalID),
		zap.Int64("walletBalance", updated.WalletBalance),
		zap.String("edBalance", updated.EDBalance.String()))

	return &domain.ApplyResult{
		Transaction: transaction,
		Balance:     domain.BalanceOf(updated),
	}, nil
}

// moveBalance applies the delta of req with an in-store increment
func (uc *LedgerUseCase) moveBalance(ctx context.Context, repos domain.Repositories, req domain.ApplyRequest) error {
	switch req.Currency {
	case domain.CurrencyXAF:
		ok, err := repos.Users.AddWallet(ctx, req.UserID, req.Amount.IntPart())
		if err != nil {
			uc.logger.Error("Failed to update wallet balance", zap.String("userID", req.UserID), zap.Error(err))
			return domain.NewPersistenceError("update wallet balance", err)
		}
		if !ok {
			uc.logger.Warn("Insufficient wallet balance",
				zap.String("userID", req.UserID),
				zap.String("amount", req.Amount.String()))
			return domain.NewAppError(domain.ErrCodeInsufficientBalance, "Insufficient balance", 400, nil)
		}
	case domain.CurrencyED:
		earned := decimal.Zero
		if req.Type.IsEarning() && req.Amount.IsPositive() {
			earned = req.Amount
		}
		ok, err := repos.Users.AddED(ctx, req.UserID, req.Amount, earned)
		if err != nil {
			uc.logger.Error("Failed to update ED balance", zap.String("userID", req.UserID), zap.Error(err))
			return domain.NewPersistenceError("update ED balance", err)
		}
		if !ok {
			return domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
		}
	}
	return nil
}

// duplicateResult returns the stored transaction of an external id that was already applied
func (uc *LedgerUseCase) duplicateResult(ctx context.Context, repos domain.Repositories, req domain.ApplyRequest, user *domain.User) (*domain.ApplyResult, error) {
	existing, err := repos.Transactions.GetByExternalID(ctx, req.ExternalID)
	if err != nil {
		return nil, domain.NewPersistenceError("get existing transaction", err)
	}
	if existing == nil {
		// the conflicting row was rolled back between our insert and this read
		return nil, domain.NewPersistenceError("get existing transaction", nil)
	}
	if existing.UserID != req.UserID || existing.Type != req.Type {
		uc.logger.Error("External id reused for a different transaction",
			zap.String("externalID", req.ExternalID),
			zap.String("existingUserID", existing.UserID),
			zap.String("existingType", string(existing.Type)))
		return nil, domain.NewConflictError("External id already used by another transaction")
	}

	metrics.LedgerApplyTotal.WithLabelValues(string(req.Type), string(req.Currency), "duplicate").Inc()
	uc.logger.Info("Duplicate ledger transaction, returning stored result",
		zap.String("externalID", req.ExternalID),
		zap.String("transactionID", existing.ID))

	return &domain.ApplyResult{
		Transaction: existing,
		Balance:     domain.BalanceOf(user),
		Duplicate:   true,
	}, nil
}

// GetBalance returns the balances of a user
func (uc *LedgerUseCase) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	user, err := uc.store.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("get user", err)
	}
	if user == nil {
		return nil, domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
	}
	balance := domain.BalanceOf(user)
	return &balance, nil
}

// GetTransactions lists the ledger rows of a user, newest first
func (uc *LedgerUseCase) GetTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	transactions, err := uc.store.Repos().Transactions.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list transactions", err)
	}
	return transactions, nil
}
