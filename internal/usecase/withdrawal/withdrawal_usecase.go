package withdrawal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/usecase/ledger"
	"github.com/saradorri/edrewards/internal/usecase/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// WithdrawalUseCase debits cash-out requests up front and settles them on admin review
type WithdrawalUseCase struct {
	store  domain.Store
	ledger *ledger.LedgerUseCase
	region string
	now    func() time.Time
	logger *logger.Logger
}

// NewWithdrawalUseCase creates a new withdrawal usecase
func NewWithdrawalUseCase(store domain.Store, ledger *ledger.LedgerUseCase, region string, logger *logger.Logger) *WithdrawalUseCase {
	logger.Info("WithdrawalUseCase initialized successfully")
	return &WithdrawalUseCase{
		store:  store,
		ledger: ledger,
		region: region,
		now:    time.Now,
		logger: logger.Named("withdrawal"),
	}
}

// RequestWithdrawal debits the wallet and records a pending request
func (uc *WithdrawalUseCase) RequestWithdrawal(ctx context.Context, userID string, amount int64, phone string) (*domain.Withdrawal, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Requesting withdrawal", zap.String("userID", userID), zap.Int64("amount", amount))

	if amount <= 0 {
		return nil, domain.NewAppError(domain.ErrCodeInvalidAmount, "Amount must be greater than 0", http.StatusBadRequest, nil)
	}
	normalized, err := payment.NormalizePhone(phone, uc.region)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	id := uuid.NewString()
	withdrawal := &domain.Withdrawal{
		ID:         id,
		UserID:     userID,
		Amount:     amount,
		Phone:      normalized,
		Status:     domain.WithdrawalStatusPending,
		ExternalID: "withdrawal:" + id,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := uc.ledger.ApplyInTx(ctx, repos, domain.ApplyRequest{
			UserID:     userID,
			Type:       domain.TransactionTypeWithdrawal,
			Amount:     decimal.NewFromInt(-amount),
			Currency:   domain.CurrencyXAF,
			ExternalID: withdrawal.ExternalID,
			Metadata:   domain.JSONB{"withdrawal_id": id, "phone": normalized},
		}); err != nil {
			return err
		}
		if err := repos.Withdrawals.Create(ctx, withdrawal); err != nil {
			return domain.NewPersistenceError("create withdrawal", err)
		}
		return nil
	})
	if err != nil {
		log.Warn("Withdrawal request failed", zap.String("userID", userID), zap.Error(err))
		return nil, asAppError("request withdrawal", err)
	}

	ledger.Notify(ctx, uc.store, uc.logger, notice(withdrawal, "Withdrawal requested",
		fmt.Sprintf("Your withdrawal of %d XAF is awaiting review.", amount), now))

	log.Info("Withdrawal requested", zap.String("withdrawalID", id), zap.Int64("amount", amount))
	return withdrawal, nil
}

// ListUserWithdrawals lists the requests of a user, newest first
func (uc *WithdrawalUseCase) ListUserWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	limit, offset = normalizePage(limit, offset)
	withdrawals, err := uc.store.Repos().Withdrawals.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list withdrawals", err)
	}
	return withdrawals, nil
}

// ListPending lists requests awaiting review, oldest first
func (uc *WithdrawalUseCase) ListPending(ctx context.Context, actorID string, limit, offset int) ([]*domain.Withdrawal, error) {
	if _, err := ledger.RequireAdmin(ctx, uc.store.Repos(), actorID); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	withdrawals, err := uc.store.Repos().Withdrawals.ListByStatus(ctx, domain.WithdrawalStatusPending, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list pending withdrawals", err)
	}
	return withdrawals, nil
}

// Approve marks a pending request as paid out
func (uc *WithdrawalUseCase) Approve(ctx context.Context, actorID, withdrawalID string) (*domain.Withdrawal, error) {
	return uc.review(ctx, actorID, withdrawalID, domain.WithdrawalStatusApproved, "")
}

// Reject refunds a pending request to the wallet
func (uc *WithdrawalUseCase) Reject(ctx context.Context, actorID, withdrawalID, reason string) (*domain.Withdrawal, error) {
	return uc.review(ctx, actorID, withdrawalID, domain.WithdrawalStatusRejected, reason)
}

func (uc *WithdrawalUseCase) review(ctx context.Context, actorID, withdrawalID string, to domain.WithdrawalStatus, reason string) (*domain.Withdrawal, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Reviewing withdrawal",
		zap.String("adminID", actorID),
		zap.String("withdrawalID", withdrawalID),
		zap.String("decision", string(to)))

	var (
		withdrawal *domain.Withdrawal
		message    *domain.Notification
	)
	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := ledger.RequireAdmin(ctx, repos, actorID); err != nil {
			return err
		}

		var err error
		withdrawal, err = repos.Withdrawals.GetByIDForUpdate(ctx, withdrawalID)
		if err != nil {
			return domain.NewPersistenceError("lock withdrawal", err)
		}
		if withdrawal == nil {
			return domain.NewAppError(domain.ErrCodeWithdrawalNotFound, "Withdrawal not found", http.StatusNotFound, nil)
		}
		if withdrawal.Status != domain.WithdrawalStatusPending {
			return domain.NewAppError(domain.ErrCodeWithdrawalInvalidStatus,
				fmt.Sprintf("Withdrawal is already %s", withdrawal.Status), http.StatusConflict, nil)
		}

		now := uc.now()
		moved, err := repos.Withdrawals.Review(ctx, withdrawal.ID, to, actorID, reason, now)
		if err != nil {
			return domain.NewPersistenceError("review withdrawal", err)
		}
		if !moved {
			return domain.NewAppError(domain.ErrCodeWithdrawalInvalidStatus, "Withdrawal is no longer pending", http.StatusConflict, nil)
		}
		withdrawal.Status = to
		withdrawal.ReviewedBy = &actorID
		withdrawal.ReviewedAt = &now
		withdrawal.Reason = reason

		details := domain.JSONB{"withdrawal_id": withdrawal.ID, "amount": withdrawal.Amount, "reason": reason}
		action := domain.AuditActionApproveWithdrawal
		title, body := "Withdrawal approved", fmt.Sprintf("Your withdrawal of %d XAF was sent.", withdrawal.Amount)

		if to == domain.WithdrawalStatusRejected {
			action = domain.AuditActionRejectWithdrawal
			title, body = "Withdrawal rejected", fmt.Sprintf("Your withdrawal of %d XAF was refunded to your wallet.", withdrawal.Amount)

			refund, err := uc.ledger.ApplyInTx(ctx, repos, domain.ApplyRequest{
				UserID:     withdrawal.UserID,
				Type:       domain.TransactionTypeWithdrawalRefund,
				Amount:     decimal.NewFromInt(withdrawal.Amount),
				Currency:   domain.CurrencyXAF,
				ExternalID: "withdrawal-refund:" + withdrawal.ID,
				Metadata:   domain.JSONB{"withdrawal_id": withdrawal.ID, "admin_id": actorID},
			})
			if err != nil {
				return err
			}
			details["refund_transaction_id"] = refund.Transaction.ID
		}

		message = notice(withdrawal, title, body, now)
		return ledger.Audit(ctx, repos, uc.logger, actorID, action, withdrawal.UserID, details)
	})
	if err != nil {
		return nil, asAppError("review withdrawal", err)
	}

	ledger.Notify(ctx, uc.store, uc.logger, message)

	log.Info("Withdrawal reviewed", zap.String("withdrawalID", withdrawalID), zap.String("status", string(to)))
	return withdrawal, nil
}

func notice(w *domain.Withdrawal, title, message string, at time.Time) *domain.Notification {
	return &domain.Notification{
		UserID:    w.UserID,
		Type:      domain.NotificationTypeWithdrawal,
		Title:     title,
		Message:   message,
		DedupKey:  fmt.Sprintf("withdrawal:%s:%s", w.ID, w.Status),
		CreatedAt: at,
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func asAppError(operation string, err error) error {
	if _, ok := domain.IsAppError(err); ok {
		return err
	}
	return domain.NewPersistenceError(operation, err)
}
