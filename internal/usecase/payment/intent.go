package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateIntent validates a purchase against server-side pricing, records a pending
// machine_purchase row and asks the provider to collect the payment.
func (uc *PaymentUseCase) CreateIntent(ctx context.Context, req domain.IntentRequest) (*domain.IntentResult, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Creating purchase intent",
		zap.String("userID", req.UserID),
		zap.String("machineTypeID", req.MachineTypeID),
		zap.Int64("clientAmount", req.ClientAmount))

	phone, err := normalizePhone(req.Phone, uc.cfg.Region)
	if err != nil {
		log.Warn("Rejected purchase intent: invalid phone", zap.String("userID", req.UserID))
		metrics.PaymentIntentsTotal.WithLabelValues("invalid_phone").Inc()
		return nil, err
	}

	machineType, err := uc.store.Repos().Machines.GetType(ctx, req.MachineTypeID)
	if err != nil {
		log.Error("Failed to get machine type", zap.String("machineTypeID", req.MachineTypeID), zap.Error(err))
		return nil, domain.NewPersistenceError("get machine type", err)
	}
	if machineType == nil {
		log.Warn("Machine type not found", zap.String("machineTypeID", req.MachineTypeID))
		return nil, domain.NewAppError(domain.ErrCodeMachineTypeNotFound, "Machine type not found", http.StatusNotFound, nil)
	}

	price, discount := uc.pricer.Price(machineType.Price)
	if diff := req.ClientAmount - price; diff > uc.cfg.PriceTolerance || -diff > uc.cfg.PriceTolerance {
		log.Warn("Rejected purchase intent: price mismatch",
			zap.String("userID", req.UserID),
			zap.Int64("clientAmount", req.ClientAmount),
			zap.Int64("serverPrice", price))
		metrics.PaymentIntentsTotal.WithLabelValues("price_mismatch").Inc()
		return nil, domain.NewAppError(domain.ErrCodePriceMismatch,
			fmt.Sprintf("Price mismatch: expected %d XAF", price), http.StatusBadRequest, nil)
	}

	lockKey := "purchase:" + req.UserID
	if err := uc.locks.Lock(ctx, lockKey); err != nil {
		return nil, domain.NewConflictError("Another purchase is being processed, retry shortly")
	}
	pending, err := uc.recordIntent(ctx, req, machineType, price, discount, phone)
	uc.locks.Unlock(lockKey)
	if err != nil {
		return nil, err
	}

	return uc.initiate(ctx, pending, req, phone, price)
}

// recordIntent writes the pending row under the user row lock so ownership and
// duplicate checks cannot race with a concurrent intent of the same user.
func (uc *PaymentUseCase) recordIntent(ctx context.Context, req domain.IntentRequest, machineType *domain.MachineType, price, discount int64, phone string) (*domain.Transaction, error) {
	log := uc.logger.WithContext(ctx)
	var pending *domain.Transaction

	err := uc.store.WithinTransaction(ctx, func(ctx context.Context, repos domain.Repositories) error {
		user, err := repos.Users.GetByIDForUpdate(ctx, req.UserID)
		if err != nil {
			return domain.NewPersistenceError("lock user", err)
		}
		if user == nil {
			return domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", http.StatusNotFound, nil)
		}

		owned, err := repos.Machines.GetUserMachineByType(ctx, req.UserID, machineType.ID)
		if err != nil {
			return domain.NewPersistenceError("check ownership", err)
		}
		if owned != nil {
			log.Warn("Rejected purchase intent: already owned",
				zap.String("userID", req.UserID),
				zap.String("machineTypeID", machineType.ID))
			metrics.PaymentIntentsTotal.WithLabelValues("already_owned").Inc()
			return domain.NewAppError(domain.ErrCodeAlreadyOwned, "Machine already owned", http.StatusConflict, nil)
		}

		now := uc.now()
		prefix := fmt.Sprintf("purchase:%s:%s:", machineType.ID, req.UserID)
		duplicate, err := repos.Transactions.FindPendingByPrefix(ctx, req.UserID, prefix, now.Add(-uc.cfg.DedupWindow))
		if err != nil {
			return domain.NewPersistenceError("check pending purchases", err)
		}
		if duplicate != nil {
			log.Warn("Rejected purchase intent: pending payment exists",
				zap.String("userID", req.UserID),
				zap.String("externalID", duplicate.ExternalID))
			metrics.PaymentIntentsTotal.WithLabelValues("duplicate_pending").Inc()
			return domain.NewAppError(domain.ErrCodeDuplicatePendingPayment,
				"A payment for this machine is already pending", http.StatusConflict, nil)
		}

		pending = &domain.Transaction{
			ID:         uuid.NewString(),
			UserID:     req.UserID,
			Type:       domain.TransactionTypeMachinePurchase,
			Amount:     decimal.NewFromInt(-price),
			Currency:   domain.CurrencyXAF,
			Status:     domain.TransactionStatusPending,
			ExternalID: fmt.Sprintf("%s%d:%s", prefix, now.UnixMilli(), uuid.NewString()[:8]),
			Metadata: domain.JSONB{
				"machine_type_id":  machineType.ID,
				"list_price":       machineType.Price,
				"discount_percent": discount,
				"phone":            phone,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		inserted, err := repos.Transactions.Insert(ctx, pending)
		if err != nil {
			return domain.NewPersistenceError("insert purchase intent", err)
		}
		if !inserted {
			return domain.NewConflictError("Purchase intent already exists")
		}
		return nil
	})
	if err != nil {
		return nil, asAppError("record purchase intent", err)
	}

	log.Info("Purchase intent recorded",
		zap.String("externalID", pending.ExternalID),
		zap.Int64("price", price))
	return pending, nil
}

// initiate calls the provider for a recorded intent. Only a definite refusal fails it.
// Timeouts, 5xx answers and transport errors leave the row pending, because the payer
// may have been charged; the webhook or the poller settles it.
func (uc *PaymentUseCase) initiate(ctx context.Context, pending *domain.Transaction, req domain.IntentRequest, phone string, price int64) (*domain.IntentResult, error) {
	log := uc.logger.WithContext(ctx)

	medium := req.Medium
	if medium == "" {
		medium = uc.cfg.DefaultMedium
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.ProviderTimeout)
	defer cancel()

	initiation, err := uc.provider.InitiatePayment(callCtx, domain.PaymentRequest{
		Amount:     price,
		Phone:      phone,
		Medium:     medium,
		Name:       req.Name,
		Email:      req.Email,
		UserID:     req.UserID,
		ExternalID: pending.ExternalID,
		Message:    uc.cfg.PaymentMessage,
	})

	result := &domain.IntentResult{
		ExternalID: pending.ExternalID,
		Amount:     price,
		Status:     domain.TransactionStatusPending,
	}

	if err == nil {
		if err := uc.store.Repos().Transactions.SetProviderReference(ctx, pending.ID, initiation.TransID); err != nil {
			// the poller falls back to the external id lookup
			log.Error("Failed to store provider reference",
				zap.String("externalID", pending.ExternalID),
				zap.String("transID", initiation.TransID),
				zap.Error(err))
		}
		result.ProviderSessionID = initiation.TransID
		metrics.PaymentIntentsTotal.WithLabelValues("initiated").Inc()
		log.Info("Payment initiated",
			zap.String("externalID", pending.ExternalID),
			zap.String("transID", initiation.TransID))
		return result, nil
	}

	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) || !isRefusal(providerErr) {
		label := "provider_error"
		if errors.Is(err, domain.ErrProviderTimeout) || errors.Is(err, context.DeadlineExceeded) {
			label = "timeout"
		}
		metrics.PaymentIntentsTotal.WithLabelValues(label).Inc()
		log.Warn("Provider outcome unknown, leaving intent pending",
			zap.String("externalID", pending.ExternalID),
			zap.Error(err))
		return result, nil
	}

	// recorded even when the client has gone away
	if _, failErr := uc.store.Repos().Transactions.UpdateStatus(context.WithoutCancel(ctx), pending.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed); failErr != nil {
		log.Error("Failed to mark purchase intent failed",
			zap.String("externalID", pending.ExternalID),
			zap.Error(failErr))
	}

	if providerErr.IsInsufficientFunds() {
		metrics.PaymentIntentsTotal.WithLabelValues("insufficient_funds").Inc()
		log.Warn("Provider refused payment: insufficient funds",
			zap.String("externalID", pending.ExternalID),
			zap.Int("statusCode", providerErr.StatusCode))
		return nil, domain.NewAppError(domain.ErrCodeInsufficientFunds,
			"Insufficient mobile money balance", http.StatusPaymentRequired, err)
	}

	metrics.PaymentIntentsTotal.WithLabelValues("refused").Inc()
	log.Warn("Provider refused payment",
		zap.String("externalID", pending.ExternalID),
		zap.Int("statusCode", providerErr.StatusCode),
		zap.String("code", providerErr.Code))
	return nil, domain.NewAppError(domain.ErrCodePaymentRefused,
		"Payment was refused by the provider", http.StatusUnprocessableEntity, err)
}

// isRefusal reports whether the provider definitely declined to collect the payment
func isRefusal(err *domain.ProviderError) bool {
	return err.Is4xxError() || err.IsInsufficientFunds()
}
