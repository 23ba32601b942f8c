package ledger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var restorableTypes = []domain.TransactionType{
	domain.TransactionTypeEarningClaim,
	domain.TransactionTypeAdReward,
	domain.TransactionTypeReferralBonus,
}

// RequireAdmin loads the actor and fails with FORBIDDEN unless they hold the admin role
func RequireAdmin(ctx context.Context, repos domain.Repositories, actorID string) (*domain.User, error) {
	actor, err := repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, domain.NewPersistenceError("get actor", err)
	}
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.NewAppError(domain.ErrCodeForbidden, "Admin role required", http.StatusForbidden, nil)
	}
	return actor, nil
}

// Audit writes an admin audit row and the matching structured log line
func Audit(ctx context.Context, repos domain.Repositories, log *logger.Logger, actorID, action, targetUserID string, details domain.JSONB) error {
	entry := &domain.AdminAuditLog{
		ID:           uuid.NewString(),
		AdminID:      actorID,
		Action:       action,
		TargetUserID: targetUserID,
		Details:      details,
	}
	if err := repos.Audit.Create(ctx, entry); err != nil {
		return domain.NewPersistenceError("write audit log", err)
	}
	log.WithContext(ctx).Info("Admin action",
		zap.String("adminID", actorID),
		zap.String("action", action),
		zap.String("targetUserID", targetUserID),
		zap.Time("at", entry.CreatedAt),
		zap.Any("details", details))
	return nil
}

// RestoreBalance credits a user back. Without an amount the last completed earning or
// bonus transaction is replayed with its amount and currency.
func (uc *LedgerUseCase) RestoreBalance(ctx context.Context, actorID string, req domain.RestoreRequest) (*domain.ApplyResult, error) {
	var result *domain.ApplyResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := RequireAdmin(ctx, repos, actorID); err != nil {
			return err
		}

		target, err := repos.Users.GetByID(ctx, req.UserID)
		if err != nil {
			return domain.NewPersistenceError("get user", err)
		}
		if target == nil {
			return domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
		}

		amount, currency, key, source, err := uc.resolveRestore(ctx, repos, req)
		if err != nil {
			return err
		}

		metadata := domain.JSONB{"admin_id": actorID, "reason": req.Reason}
		if source != "" {
			metadata["source_transaction_id"] = source
		}

		result, err = uc.ApplyInTx(ctx, repos, domain.ApplyRequest{
			UserID:     req.UserID,
			Type:       domain.TransactionTypeBalanceRestoration,
			Amount:     amount,
			Currency:   currency,
			ExternalID: key,
			Metadata:   metadata,
		})
		if err != nil {
			return err
		}

		return Audit(ctx, repos, uc.logger, actorID, domain.AuditActionRestoreBalance, req.UserID, domain.JSONB{
			"amount":         amount.String(),
			"currency":       string(currency),
			"external_id":    key,
			"duplicate":      result.Duplicate,
			"source":         source,
			"reason":         req.Reason,
			"transaction_id": result.Transaction.ID,
		})
	})
	if err != nil {
		return nil, asAppError("restore balance", err)
	}
	return result, nil
}

func (uc *LedgerUseCase) resolveRestore(ctx context.Context, repos domain.Repositories, req domain.RestoreRequest) (decimal.Decimal, domain.Currency, string, string, error) {
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return decimal.Zero, "", "", "", domain.NewAppError(domain.ErrCodeInvalidAmount, "restore amount must be positive", 400, nil)
		}
		if !req.Currency.Valid() {
			return decimal.Zero, "", "", "", domain.NewAppError(domain.ErrCodeInvalidCurrency, "unsupported currency", 400, nil)
		}
		key := req.IdempotencyKey
		if key == "" {
			key = uuid.NewString()
		}
		return *req.Amount, req.Currency, fmt.Sprintf("restore:%s:%s", req.UserID, key), "", nil
	}

	last, err := repos.Transactions.LastCompletedOfTypes(ctx, req.UserID, restorableTypes)
	if err != nil {
		return decimal.Zero, "", "", "", domain.NewPersistenceError("find last earning", err)
	}
	if last == nil {
		return decimal.Zero, "", "", "", domain.NewAppError(domain.ErrCodeTransactionNotFound, "No earning or bonus transaction to restore", 404, nil)
	}

	key := req.IdempotencyKey
	if key == "" {
		key = last.ID
	}
	return last.Amount, last.Currency, fmt.Sprintf("restore:%s:%s", req.UserID, key), last.ID, nil
}

// AdjustBalance sets, adds to or subtracts from one balance of a user
func (uc *LedgerUseCase) AdjustBalance(ctx context.Context, actorID string, req domain.AdjustRequest) (*domain.ApplyResult, error) {
	if err := validateAdjustRequest(req); err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	externalID := fmt.Sprintf("admin-adjust:%s:%s", req.UserID, key)

	var result *domain.ApplyResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := RequireAdmin(ctx, repos, actorID); err != nil {
			return err
		}

		target, err := repos.Users.GetByIDForUpdate(ctx, req.UserID)
		if err != nil {
			return domain.NewPersistenceError("lock user", err)
		}
		if target == nil {
			return domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", 404, nil)
		}

		existing, err := repos.Transactions.GetByExternalID(ctx, externalID)
		if err != nil {
			return domain.NewPersistenceError("get existing adjustment", err)
		}
		if existing != nil {
			result = &domain.ApplyResult{Transaction: existing, Balance: domain.BalanceOf(target), Duplicate: true}
			return nil
		}

		delta := adjustmentDelta(target, req)
		if req.Currency == domain.CurrencyED && target.EDBalance.Add(delta).IsNegative() {
			return domain.NewAppError(domain.ErrCodeInsufficientBalance, "Adjustment would make the ED balance negative", 400, nil)
		}

		details := domain.JSONB{
			"operation":   string(req.Operation),
			"amount":      req.Amount.String(),
			"currency":    string(req.Currency),
			"delta":       delta.String(),
			"external_id": externalID,
			"reason":      req.Reason,
		}

		if delta.IsZero() {
			result = &domain.ApplyResult{Balance: domain.BalanceOf(target)}
			return Audit(ctx, repos, uc.logger, actorID, domain.AuditActionAdjustBalance, req.UserID, details)
		}

		result, err = uc.ApplyInTx(ctx, repos, domain.ApplyRequest{
			UserID:     req.UserID,
			Type:       domain.TransactionTypeAdminAdjustment,
			Amount:     delta,
			Currency:   req.Currency,
			ExternalID: externalID,
			Metadata:   domain.JSONB{"admin_id": actorID, "operation": string(req.Operation), "reason": req.Reason},
		})
		if err != nil {
			return err
		}

		details["transaction_id"] = result.Transaction.ID
		return Audit(ctx, repos, uc.logger, actorID, domain.AuditActionAdjustBalance, req.UserID, details)
	})
	if err != nil {
		return nil, asAppError("adjust balance", err)
	}
	return result, nil
}

func validateAdjustRequest(req domain.AdjustRequest) error {
	if req.UserID == "" {
		return domain.NewAppError(domain.ErrCodeRequiredField, "user id is required", 400, nil)
	}
	if !req.Currency.Valid() {
		return domain.NewAppError(domain.ErrCodeInvalidCurrency, "unsupported currency", 400, nil)
	}
	switch req.Operation {
	case domain.AdjustOperationSet:
		if req.Amount.IsNegative() {
			return domain.NewAppError(domain.ErrCodeInvalidAmount, "balance cannot be set below zero", 400, nil)
		}
	case domain.AdjustOperationAdd, domain.AdjustOperationSubtract:
		if !req.Amount.IsPositive() {
			return domain.NewAppError(domain.ErrCodeInvalidAmount, "amount must be positive", 400, nil)
		}
	default:
		return domain.NewAppError(domain.ErrCodeInvalidOperation, "operation must be set, add or subtract", 400, nil)
	}
	if req.Currency == domain.CurrencyXAF && !isWhole(req.Amount) {
		return domain.NewAppError(domain.ErrCodeInvalidAmount, "XAF amounts must be whole numbers", 400, nil)
	}
	return nil
}

// adjustmentDelta turns an adjustment into a signed delta against the locked balance
func adjustmentDelta(target *domain.User, req domain.AdjustRequest) decimal.Decimal {
	current := target.EDBalance
	if req.Currency == domain.CurrencyXAF {
		current = decimal.NewFromInt(target.WalletBalance)
	}
	switch req.Operation {
	case domain.AdjustOperationSet:
		return req.Amount.Sub(current)
	case domain.AdjustOperationSubtract:
		return req.Amount.Neg()
	default:
		return req.Amount
	}
}

// ReconcileUser is the admin entry point of Reconcile
func (uc *LedgerUseCase) ReconcileUser(ctx context.Context, actorID, userID string) (*domain.ReconcileResult, error) {
	var result *domain.ReconcileResult
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := RequireAdmin(ctx, repos, actorID); err != nil {
			return err
		}

		var err error
		result, err = uc.reconcileInTx(ctx, repos, userID)
		if err != nil {
			return err
		}

		return Audit(ctx, repos, uc.logger, actorID, domain.AuditActionReconcile, userID, domain.JSONB{
			"corrected":          result.Corrected,
			"wallet_drift":       result.WalletDrift,
			"ed_drift":           result.EDDrift.String(),
			"total_earned_drift": result.TotalEarnedDrift.String(),
		})
	})
	if err != nil {
		return nil, asAppError("reconcile user", err)
	}
	return result, nil
}
